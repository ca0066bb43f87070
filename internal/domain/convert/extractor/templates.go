package extractor

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
)

// Column names a field of the line-item table.
type Column string

const (
	ColReference   Column = "reference"
	ColEAN         Column = "ean"
	ColCustomCode  Column = "custom_code"
	ColDescription Column = "description"
	ColOrigin      Column = "origin"
	ColQuantity    Column = "quantity"
	ColUnitPrice   Column = "unit_price"
	ColTotalPrice  Column = "total_price"
)

// ColumnRange is the horizontal span, in points, a column occupies on the page.
type ColumnRange struct {
	Column Column  `json:"column"`
	MinX   float64 `json:"min_x"`
	MaxX   float64 `json:"max_x"`
}

// Template is the column layout of one supplier's line-item table.
type Template struct {
	Supplier         string        `json:"supplier"`
	Columns          []ColumnRange `json:"columns"`
	LineTolerance    float64       `json:"line_tolerance"`
	ReferencePattern string        `json:"reference_pattern"`
	StopPattern      string        `json:"stop_pattern"`
}

// Templates maps a supplier key to its template.
type Templates map[string]Template

const (
	defaultReferencePattern = `^[A-Z]{0,4}\d[A-Z0-9./-]{2,18}$`
	defaultStopPattern      = `(?i)^(?:SOUS[- ]?TOTAL|SUB[- ]?TOTAL|TOTAL|A REPORTER|CARRIED FORWARD)\b`
)

// DefaultTemplates returns the built-in layouts, measured on A4 portrait pages.
func DefaultTemplates() Templates {
	return Templates{
		"dior": {
			Supplier: "dior",
			Columns: []ColumnRange{
				{ColReference, 20, 88},
				{ColEAN, 88, 170},
				{ColCustomCode, 170, 228},
				{ColDescription, 228, 380},
				{ColOrigin, 380, 425},
				{ColQuantity, 425, 465},
				{ColUnitPrice, 465, 520},
				{ColTotalPrice, 520, 580},
			},
		},
		"lvmh": {
			Supplier: "lvmh",
			Columns: []ColumnRange{
				{ColReference, 25, 95},
				{ColDescription, 95, 260},
				{ColEAN, 260, 340},
				{ColCustomCode, 340, 400},
				{ColQuantity, 400, 440},
				{ColUnitPrice, 440, 505},
				{ColTotalPrice, 505, 575},
			},
		},
		"bulgari": {
			Supplier:      "bulgari",
			LineTolerance: 3,
			Columns: []ColumnRange{
				{ColReference, 30, 92},
				{ColDescription, 92, 270},
				{ColOrigin, 270, 318},
				{ColCustomCode, 318, 378},
				{ColQuantity, 378, 420},
				{ColUnitPrice, 420, 495},
				{ColTotalPrice, 495, 570},
			},
		},
		"coty": {
			Supplier: "coty",
			Columns: []ColumnRange{
				{ColReference, 20, 80},
				{ColEAN, 80, 160},
				{ColDescription, 160, 350},
				{ColQuantity, 350, 400},
				{ColUnitPrice, 400, 480},
				{ColTotalPrice, 480, 570},
			},
		},
		"interparfums": {
			Supplier: "interparfums",
			Columns: []ColumnRange{
				{ColReference, 20, 85},
				{ColDescription, 85, 300},
				{ColEAN, 300, 380},
				{ColQuantity, 380, 420},
				{ColUnitPrice, 420, 490},
				{ColTotalPrice, 490, 570},
			},
		},
	}
}

// LoadTemplates reads a JSON array of templates from path and lays them over
// the defaults; a template replaces the default of the same supplier.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	var loaded []Template
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	for _, t := range loaded {
		if t.Supplier == "" {
			return nil, fmt.Errorf("template without supplier in %s", path)
		}
		templates[t.Supplier] = t
	}
	return templates, nil
}

// compiledTemplate is a Template ready for use.
type compiledTemplate struct {
	columns   []ColumnRange
	tolerance float64
	reference *regexp.Regexp
	stop      *regexp.Regexp
}

func (t Template) compile() (*compiledTemplate, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("template %q has no columns", t.Supplier)
	}

	refPattern := t.ReferencePattern
	if refPattern == "" {
		refPattern = defaultReferencePattern
	}
	reference, err := regexp.Compile(refPattern)
	if err != nil {
		return nil, fmt.Errorf("template %q: invalid reference pattern: %w", t.Supplier, err)
	}

	stopPattern := t.StopPattern
	if stopPattern == "" {
		stopPattern = defaultStopPattern
	}
	stop, err := regexp.Compile(stopPattern)
	if err != nil {
		return nil, fmt.Errorf("template %q: invalid stop pattern: %w", t.Supplier, err)
	}

	columns := make([]ColumnRange, len(t.Columns))
	copy(columns, t.Columns)
	sort.Slice(columns, func(i, j int) bool { return columns[i].MinX < columns[j].MinX })
	for i, c := range columns {
		if c.MaxX <= c.MinX {
			return nil, fmt.Errorf("template %q: column %s has an empty range", t.Supplier, c.Column)
		}
		if i > 0 && c.MinX < columns[i-1].MaxX {
			return nil, fmt.Errorf("template %q: columns %s and %s overlap", t.Supplier, columns[i-1].Column, c.Column)
		}
	}

	return &compiledTemplate{
		columns:   columns,
		tolerance: t.LineTolerance,
		reference: reference,
		stop:      stop,
	}, nil
}

// column returns the column whose range contains x.
func (t *compiledTemplate) column(x float64) (Column, bool) {
	for _, c := range t.columns {
		if x >= c.MinX && x < c.MaxX {
			return c.Column, true
		}
	}
	return "", false
}
