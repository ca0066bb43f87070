package extractor

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

// REFERENCE EAN UNIT QTY, anywhere on the line.
var proformaRowPattern = regexp.MustCompile(`\b([A-Z]\w{3,11})\s+(\d{12,14})\s+(\d[\d.,]*)\s+(\d[\d.,]*)\b`)

// ProformaLine reads order acknowledgements, which print the unit price and
// quantity but no line total.
type ProformaLine struct{}

// Name implements Strategy.
func (ProformaLine) Name() string { return "proforma_line" }

// Supports implements Strategy.
func (ProformaLine) Supports(kind document.Kind) bool { return kind == document.KindProforma }

// Extract implements Strategy.
func (s ProformaLine) Extract(page document.Page, ctx document.Context) ([]document.Row, error) {
	lines := Lines(page.Text)

	var rows []document.Row
	for i := 0; i < len(lines); i++ {
		m := proformaRowPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		unit, err := money.ParseAmount("unit_price", m[3])
		if err != nil {
			return nil, err
		}
		qty, err := money.ParseQuantity("quantity", m[4])
		if err != nil {
			return nil, err
		}

		var desc string
		if i+1 < len(lines) && !proformaRowPattern.MatchString(lines[i+1]) {
			desc = lines[i+1]
			i++
		}

		rows = append(rows, ctx.Stamp(document.Row{
			Reference:   m[1],
			CodeEAN:     m[2],
			Description: desc,
			Quantity:    qty,
			UnitPrice:   unit,
			TotalPrice:  unit.Mul(decimal.NewFromInt(qty)),
			Page:        page.Number,
			Strategy:    s.Name(),
		}))
	}
	return rows, nil
}
