package postprocess

import (
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// Dedupe keeps the first row seen for every document.RowKey.
func Dedupe(rows []document.Row) []document.Row {
	seen := make(map[document.RowKey]struct{}, len(rows))
	out := make([]document.Row, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
