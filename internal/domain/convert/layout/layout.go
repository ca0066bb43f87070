// Package layout rebuilds visual lines from positioned glyphs.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

const (
	// DefaultTolerance is the baseline drift, in points, still considered the same line.
	DefaultTolerance = 2.0
	// wordGap is the horizontal gap, as a fraction of the font size, that separates words.
	wordGap = 0.2
	// defaultFontSize is assumed for glyphs that carry no size.
	defaultFontSize = 10.0
)

// Line is a run of glyphs sharing a baseline, ordered left to right.
type Line struct {
	Y      float64
	Glyphs []document.Glyph
}

// GroupLines buckets glyphs into lines by baseline, top of the page first.
// A glyph joins the current line when its baseline is within tolerance of the
// line's first glyph.
func GroupLines(glyphs []document.Glyph, tolerance float64) []Line {
	if len(glyphs) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	sorted := make([]document.Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" && g.S != " " {
			continue
		}
		sorted = append(sorted, g)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	for _, g := range sorted {
		if n := len(lines); n > 0 && math.Abs(lines[n-1].Y-g.Y) <= tolerance {
			lines[n-1].Glyphs = append(lines[n-1].Glyphs, g)
			continue
		}
		lines = append(lines, Line{Y: g.Y, Glyphs: []document.Glyph{g}})
	}

	for i := range lines {
		sort.SliceStable(lines[i].Glyphs, func(a, b int) bool {
			return lines[i].Glyphs[a].X < lines[i].Glyphs[b].X
		})
	}
	return lines
}

// Text renders the line, inserting a space wherever the gap between two
// glyphs is wide enough to be a word break.
func (l Line) Text() string {
	return Join(l.Glyphs)
}

// Join concatenates glyphs already ordered left to right.
func Join(glyphs []document.Glyph) string {
	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 && needsSpace(glyphs[i-1], g) {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func needsSpace(prev, next document.Glyph) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(next.S, " ") {
		return false
	}
	size := next.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	return next.X-(prev.X+prev.W) > size*wordGap
}

// PageText renders every line of a page, one per row of text.
func PageText(glyphs []document.Glyph, tolerance float64) string {
	lines := GroupLines(glyphs, tolerance)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := l.Text(); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
