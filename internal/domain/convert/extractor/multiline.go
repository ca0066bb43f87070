package extractor

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

// MultiLineLayout describes a table whose records span several lines:
// a header line, a numeric line and an optional detail line.
type MultiLineLayout struct {
	// Header captures reference and description.
	Header *regexp.Regexp
	// Numbers captures an optional customs code, quantity, unit price and total.
	Numbers *regexp.Regexp
	// Origin and EAN are searched on detail lines following the numeric line.
	Origin *regexp.Regexp
	EAN    *regexp.Regexp
	// EndOfTable closes the record in progress.
	EndOfTable *regexp.Regexp
}

// StackedLayout is the Coty and Interparfums invoice layout:
//
//	CP1234 EAU DE PARFUM 50ML
//	33030000 24 31,50 756,00
//	ORIGINE: FRANCE EAN: 3614220000000
var StackedLayout = MultiLineLayout{
	Header:     regexp.MustCompile(`^([A-Z]{1,4}\d[A-Z0-9-]{2,12})\s+([^\d\s].*)$`),
	Numbers:    regexp.MustCompile(`^(?:(\d{6,10})\s+)?(\d[\d.,]*)\s+(\d[\d.,]*)\s+(\d[\d.,]*)$`),
	Origin:     regexp.MustCompile(`(?i)\bORIGI(?:NE|N)\s*:\s*(.+?)\s*(?:\bEAN\b.*)?$`),
	EAN:        regexp.MustCompile(`(?i)\bEAN\s*:?\s*(\d{12,14})\b`),
	EndOfTable: regexp.MustCompile(`(?i)^(?:SOUS[- ]?TOTAL|SUB[- ]?TOTAL|TOTAL|A REPORTER|CARRIED FORWARD|MONTANT)\b`),
}

// MultiLine accumulates records spread over consecutive lines.
type MultiLine struct {
	name   string
	layout MultiLineLayout
}

// NewMultiLine creates a multi-line strategy for the given layout.
func NewMultiLine(name string, layout MultiLineLayout) *MultiLine {
	return &MultiLine{name: name, layout: layout}
}

// Name implements Strategy.
func (s *MultiLine) Name() string { return s.name }

// Supports implements Strategy.
func (s *MultiLine) Supports(kind document.Kind) bool { return kind == document.KindInvoice }

// pending is the record being assembled.
type pending struct {
	row     document.Row
	numbers bool
}

// Extract implements Strategy.
func (s *MultiLine) Extract(page document.Page, ctx document.Context) ([]document.Row, error) {
	var (
		rows []document.Row
		cur  *pending
	)

	flush := func() {
		if cur != nil && cur.numbers {
			rows = append(rows, ctx.Stamp(cur.row))
		}
		cur = nil
	}

	for _, line := range Lines(page.Text) {
		if s.layout.EndOfTable.MatchString(line) {
			flush()
			continue
		}

		if m := s.layout.Header.FindStringSubmatch(line); m != nil {
			flush()
			cur = &pending{row: document.Row{
				Reference:   m[1],
				Description: strings.TrimSpace(m[2]),
				Page:        page.Number,
				Strategy:    s.name,
			}}
			continue
		}

		if cur == nil {
			continue
		}

		if !cur.numbers {
			m := s.layout.Numbers.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if err := fillNumbers(&cur.row, m); err != nil {
				return nil, err
			}
			cur.numbers = true
			continue
		}

		if m := s.layout.Origin.FindStringSubmatch(line); m != nil && cur.row.Origin == "" {
			cur.row.Origin = m[1]
		}
		if m := s.layout.EAN.FindStringSubmatch(line); m != nil && cur.row.CodeEAN == "" {
			cur.row.CodeEAN = m[1]
		}
	}
	flush()

	return rows, nil
}

func fillNumbers(r *document.Row, m []string) error {
	qty, err := money.ParseQuantity("quantity", m[2])
	if err != nil {
		return err
	}
	unit, err := money.ParseAmount("unit_price", m[3])
	if err != nil {
		return err
	}
	total, err := money.ParseAmount("total_price", m[4])
	if err != nil {
		return err
	}

	r.CustomCode = m[1]
	r.Quantity = qty
	r.UnitPrice = unit
	r.TotalPrice = total
	return nil
}
