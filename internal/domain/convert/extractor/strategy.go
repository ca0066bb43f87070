// Package extractor turns page content into line items. Each supplier layout is
// handled by a Strategy; a Registry runs every strategy over a document and
// keeps one failing strategy from spoiling the others.
package extractor

import (
	"strings"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// Strategy extracts rows from a single page. Implementations are immutable
// and safe to share across requests.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string
	// Supports reports whether the strategy applies to documents of this kind.
	Supports(kind document.Kind) bool
	// Extract returns the rows found on page, stamped with ctx.
	Extract(page document.Page, ctx document.Context) ([]document.Row, error)
}

// Lines splits page text into trimmed, non-blank lines.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
