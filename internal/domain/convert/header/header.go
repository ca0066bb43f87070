// Package header reads the document-level fields printed in page headers
// (invoice number, "without payment" flag, country of origin) and folds them
// into a per-page document.Context.
package header

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// SuffixPolicy controls when the without-payment flag is re-evaluated.
type SuffixPolicy string

const (
	// SuffixPerPage re-evaluates the flag on every page; it is never carried forward.
	SuffixPerPage SuffixPolicy = "per_page"
	// SuffixWithHeader re-evaluates the flag only on pages that print an invoice
	// number and carries it forward otherwise.
	SuffixWithHeader SuffixPolicy = "with_header"
)

// ParseSuffixPolicy validates a policy name. Empty selects SuffixPerPage.
func ParseSuffixPolicy(s string) (SuffixPolicy, error) {
	switch p := SuffixPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SuffixPerPage, nil
	case SuffixPerPage, SuffixWithHeader:
		return p, nil
	default:
		return "", fmt.Errorf("unknown suffix policy %q", s)
	}
}

var (
	invoicePattern = regexp.MustCompile(`(?i)(?:FACTURE|INVOICE)[^\d]{0,60}(\d{6,})`)
	orderPattern   = regexp.MustCompile(`(?i)(?:PROFORMA|ORDER\s+NUMBER|N[°º]?\s*DE\s+COMMANDE)[^\d]{0,60}(\d{6,})`)

	withoutPaymentPattern = regexp.MustCompile(`(?i)FACTURE\s+SANS\s+PAIEMENT|INVOICE\s+WITHOUT\s+PAYMENT`)

	// Label, anything up to the colon, then the value on the same line or the next.
	originPattern = regexp.MustCompile(`(?i)(?:PAYS\s+D\s*['’]?\s*ORIGINE|COUNTRY\s+OF\s+ORIGIN)[^:\n]*:[ \t]*(?:\r?\n[ \t]*)?(\S[^\n]*)`)

	filenamePattern = regexp.MustCompile(`(?i)SIP[\s_-]*(\d{4,})`)
)

// Extractor applies page headers to a document context.
type Extractor struct {
	policy SuffixPolicy
}

// New creates a header extractor with the given suffix policy.
func New(policy SuffixPolicy) *Extractor {
	if policy == "" {
		policy = SuffixPerPage
	}
	return &Extractor{policy: policy}
}

// Apply returns the context in effect for a page, given the context of the
// previous page. Fields the page does not declare keep their previous value.
func (e *Extractor) Apply(ctx document.Context, pageText string) document.Context {
	next := ctx

	number, found := findNumber(ctx.Kind, pageText)
	if found {
		next.InvoiceBase = number
	}

	if e.policy == SuffixPerPage || found {
		next.WithoutPayment = withoutPaymentPattern.MatchString(pageText)
	}

	if origin := FindOrigin(pageText); origin != "" {
		next.Origin = origin
	}
	return next
}

// Fold applies every page in order, starting from seed. The i-th context is
// the one in effect on page i.
func (e *Extractor) Fold(seed document.Context, pages []string) []document.Context {
	contexts := make([]document.Context, len(pages))
	ctx := seed
	for i, text := range pages {
		ctx = e.Apply(ctx, text)
		contexts[i] = ctx
	}
	return contexts
}

// FindOrigin returns the declared country of origin on a page, or "".
func FindOrigin(text string) string {
	m := originPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// FromFilename extracts a pre-assigned invoice number from an upload name
// following the SIP<digits> convention.
func FromFilename(name string) (string, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func findNumber(kind document.Kind, text string) (string, bool) {
	if kind == document.KindProforma {
		if m := orderPattern.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	if m := invoicePattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}
