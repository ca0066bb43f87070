package postprocess

import (
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// BackfillOrigin gives rows without an origin the origin of their invoice,
// when every row of that invoice that has one agrees on it. The result does
// not depend on row order.
func BackfillOrigin(rows []document.Row) []document.Row {
	origins := make(map[string]map[string]struct{})
	for _, r := range rows {
		if r.Origin == "" {
			continue
		}
		set, ok := origins[r.InvoiceNumber]
		if !ok {
			set = make(map[string]struct{})
			origins[r.InvoiceNumber] = set
		}
		set[r.Origin] = struct{}{}
	}

	out := make([]document.Row, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].Origin != "" {
			continue
		}
		set := origins[out[i].InvoiceNumber]
		if len(set) != 1 {
			continue
		}
		for origin := range set {
			out[i].Origin = origin
		}
	}
	return out
}
