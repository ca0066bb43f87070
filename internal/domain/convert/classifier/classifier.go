package classifier

import (
	"strings"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

const (
	kwProforma    = "PROFORMA"
	kwAcknowledge = "ACKNOWLEDGE"
	kwAccuse      = "ACCUSE"
	kwReception   = "RECEPTION"
	kwFacture     = "FACTURE"
	kwInvoice     = "INVOICE"
)

// snippetLen bounds how much of the first page is quoted in a ClassificationError.
const snippetLen = 120

// Classifier decides whether a document is an invoice or a proforma.
type Classifier struct {
	keywords *KeywordSet
}

// New creates a classifier with the French and English document keywords.
func New() *Classifier {
	return &Classifier{
		keywords: NewKeywordSet(kwProforma, kwAcknowledge, kwAccuse, kwReception, kwFacture, kwInvoice),
	}
}

// Classify inspects the first page text. Proforma signals win over invoice
// signals; a page with neither is rejected with a *document.ClassificationError.
func (c *Classifier) Classify(firstPage string) (document.Kind, error) {
	found := c.keywords.Find(firstPage)

	switch {
	case found[kwProforma]:
		return document.KindProforma, nil
	case (found[kwAcknowledge] || found[kwAccuse]) && found[kwReception]:
		return document.KindProforma, nil
	case found[kwFacture] || found[kwInvoice]:
		return document.KindInvoice, nil
	}

	return "", &document.ClassificationError{Snippet: snippet(firstPage)}
}

func snippet(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	if r := []rune(s); len(r) > snippetLen {
		return string(r[:snippetLen]) + "..."
	}
	return s
}
