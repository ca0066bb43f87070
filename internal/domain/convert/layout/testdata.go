package layout

import (
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// charWidth is the advance used for synthetic glyphs.
const charWidth = 5.0

// Word lays s out as one glyph per character starting at x on baseline y,
// the way a PDF content stream positions text.
func Word(s string, x, y float64) []document.Glyph {
	glyphs := make([]document.Glyph, 0, len(s))
	for _, r := range s {
		glyphs = append(glyphs, document.Glyph{X: x, Y: y, W: charWidth, FontSize: 9, S: string(r)})
		x += charWidth
	}
	return glyphs
}

// Words lays out several words on one baseline, each at its own x.
func Words(y float64, cells map[float64]string) []document.Glyph {
	var glyphs []document.Glyph
	for x, s := range cells {
		glyphs = append(glyphs, Word(s, x, y)...)
	}
	return glyphs
}
