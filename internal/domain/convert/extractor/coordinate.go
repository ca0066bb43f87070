package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/layout"
	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

var (
	quantityCell = regexp.MustCompile(`^\d[\d.,\s]*$`)
	eanCell      = regexp.MustCompile(`^\d{11,14}$`)
	customCell   = regexp.MustCompile(`^\d{6,10}$`)
)

// Coordinate reads tables by glyph position, using the column template of the
// supplier detected for the document. Pages of unknown suppliers yield nothing.
type Coordinate struct {
	templates map[string]*compiledTemplate
}

// NewCoordinate compiles the given templates.
func NewCoordinate(templates Templates) (*Coordinate, error) {
	c := &Coordinate{templates: make(map[string]*compiledTemplate, len(templates))}
	for key, t := range templates {
		compiled, err := t.compile()
		if err != nil {
			return nil, err
		}
		c.templates[key] = compiled
	}
	return c, nil
}

// Name implements Strategy.
func (c *Coordinate) Name() string { return "coordinate" }

// Supports implements Strategy.
func (c *Coordinate) Supports(document.Kind) bool { return true }

// Extract implements Strategy.
func (c *Coordinate) Extract(page document.Page, ctx document.Context) ([]document.Row, error) {
	tpl, ok := c.templates[ctx.Supplier]
	if !ok || len(page.Glyphs) == 0 {
		return nil, nil
	}

	var rows []document.Row
	for _, line := range layout.GroupLines(page.Glyphs, tpl.tolerance) {
		if tpl.stop.MatchString(line.Text()) {
			if len(rows) > 0 {
				break
			}
			continue
		}

		cells := tpl.cells(line)

		if !tpl.reference.MatchString(cells[ColReference]) {
			// Continuation of the previous description.
			if n := len(rows); n > 0 && cells[ColQuantity] == "" && cells[ColDescription] != "" {
				rows[n-1].Description = strings.TrimSpace(rows[n-1].Description + " " + cells[ColDescription])
			}
			continue
		}

		if !quantityCell.MatchString(cells[ColQuantity]) {
			continue
		}

		row, err := c.row(cells)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.Number, err)
		}
		row.Page = page.Number
		rows = append(rows, ctx.Stamp(row))
	}
	return rows, nil
}

func (c *Coordinate) row(cells map[Column]string) (document.Row, error) {
	qty, err := money.ParseQuantity("quantity", cells[ColQuantity])
	if err != nil {
		return document.Row{}, err
	}
	unit, err := money.ParseAmount("unit_price", cells[ColUnitPrice])
	if err != nil {
		return document.Row{}, err
	}

	total := unit.Mul(decimal.NewFromInt(qty))
	if cells[ColTotalPrice] != "" {
		if total, err = money.ParseAmount("total_price", cells[ColTotalPrice]); err != nil {
			return document.Row{}, err
		}
	}

	return document.Row{
		Reference:   cells[ColReference],
		CodeEAN:     digitsMatching(cells[ColEAN], eanCell),
		CustomCode:  digitsMatching(cells[ColCustomCode], customCell),
		Description: cells[ColDescription],
		Origin:      cells[ColOrigin],
		Quantity:    qty,
		UnitPrice:   unit,
		TotalPrice:  total,
		Strategy:    c.Name(),
	}, nil
}

// cells assigns each glyph of the line to a column by its horizontal midpoint.
func (t *compiledTemplate) cells(line layout.Line) map[Column]string {
	grouped := make(map[Column][]document.Glyph, len(t.columns))
	for _, g := range line.Glyphs {
		if col, ok := t.column(g.X + g.W/2); ok {
			grouped[col] = append(grouped[col], g)
		}
	}

	cells := make(map[Column]string, len(grouped))
	for col, glyphs := range grouped {
		cells[col] = layout.Join(glyphs)
	}
	return cells
}

// digitsMatching drops inner spaces and keeps the value only if it has the expected shape.
func digitsMatching(s string, shape *regexp.Regexp) string {
	s = strings.ReplaceAll(s, " ", "")
	if shape.MatchString(s) {
		return s
	}
	return ""
}
