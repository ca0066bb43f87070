// Package document holds the types shared by every stage of the conversion
// pipeline: extracted rows, the per-page header context and page content.
package document

import (
	"github.com/shopspring/decimal"
)

// Kind is the document classification decided from the first page.
type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindProforma Kind = "proforma"
)

// WithoutPaymentSuffix is appended to invoice numbers on "without payment" documents.
const WithoutPaymentSuffix = "PLV"

// Row is one line item extracted from a document.
type Row struct {
	Reference     string
	CodeEAN       string
	CustomCode    string
	Description   string
	Origin        string
	Quantity      int64
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	InvoiceNumber string

	// Bookkeeping, not written to the spreadsheet.
	OrderNumber string // proforma order number
	Page        int    // 1-based source page, 0 when unknown
	Strategy    string // extractor that produced the row
}

// RowKey identifies a line item for deduplication.
type RowKey struct {
	Reference string
	CodeEAN   string
	Number    string
}

// Key returns the deduplication key of the row. Proforma rows have no invoice
// number and are keyed by their order number instead.
func (r Row) Key() RowKey {
	number := r.InvoiceNumber
	if number == "" {
		number = r.OrderNumber
	}
	return RowKey{
		Reference: r.Reference,
		CodeEAN:   r.CodeEAN,
		Number:    number,
	}
}

// Glyph is a positioned run of text on a page. Y grows upwards, as in PDF user space.
type Glyph struct {
	X        float64
	Y        float64
	W        float64
	FontSize float64
	S        string
}

// Page is the content of a single PDF page.
type Page struct {
	Number int
	Text   string // lines separated by '\n'
	Glyphs []Glyph
}
