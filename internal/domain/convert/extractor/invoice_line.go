package extractor

import (
	"regexp"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

// REFERENCE EAN CUSTOM QTY UNIT TOTAL, on one line.
var invoiceRowPattern = regexp.MustCompile(`^([A-Z]\w{3,11})\s+(\d{12,14})\s+(\d{6,9})\s+(\d[\d.,]*)\s+(\d[\d.,]*)\s+(\d[\d.,]*)$`)

// InvoiceLine reads the single-line invoice table where every column is
// printed on the row line and the description follows on the next line.
type InvoiceLine struct{}

// Name implements Strategy.
func (InvoiceLine) Name() string { return "invoice_line" }

// Supports implements Strategy.
func (InvoiceLine) Supports(kind document.Kind) bool { return kind == document.KindInvoice }

// Extract implements Strategy.
func (s InvoiceLine) Extract(page document.Page, ctx document.Context) ([]document.Row, error) {
	lines := Lines(page.Text)

	var rows []document.Row
	for i := 0; i < len(lines); i++ {
		m := invoiceRowPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		qty, err := money.ParseQuantity("quantity", m[4])
		if err != nil {
			return nil, err
		}
		unit, err := money.ParseAmount("unit_price", m[5])
		if err != nil {
			return nil, err
		}
		total, err := money.ParseAmount("total_price", m[6])
		if err != nil {
			return nil, err
		}

		var desc string
		if i+1 < len(lines) && !invoiceRowPattern.MatchString(lines[i+1]) {
			desc = lines[i+1]
			i++
		}

		rows = append(rows, ctx.Stamp(document.Row{
			Reference:   m[1],
			CodeEAN:     m[2],
			CustomCode:  m[3],
			Description: desc,
			Quantity:    qty,
			UnitPrice:   unit,
			TotalPrice:  total,
			Page:        page.Number,
			Strategy:    s.Name(),
		}))
	}
	return rows, nil
}
