// Package postprocess cleans up the rows of a document once every extractor
// has run: missing codes are recovered from the page text, duplicates are
// dropped and a shared country of origin is spread over its invoice.
package postprocess

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// backfillWindow bounds how many lines after the anchor are searched.
const backfillWindow = 20

var (
	// A reference followed by a three letter country code opens an item block.
	anchorLine = regexp.MustCompile(`^[A-Z]{0,4}\d[A-Z0-9./-]{2,18}\s+[A-Z]{3}\b`)
	customRun  = regexp.MustCompile(`\b\d{6,10}\b`)
	eanRun     = regexp.MustCompile(`\b\d{11,14}\b`)
)

// BackfillCodes fills empty CustomCode and CodeEAN fields from the page the row
// came from. The block starts at the line beginning with the row's reference
// and a country code, and ends at the next such line or after backfillWindow
// lines. Existing values are never overwritten.
func BackfillCodes(rows []document.Row, pages []document.Page) []document.Row {
	out := make([]document.Row, len(rows))
	copy(out, rows)

	var pageLines [][]string
	for i := range out {
		if out[i].CustomCode != "" && out[i].CodeEAN != "" {
			continue
		}
		if pageLines == nil {
			pageLines = splitPages(pages)
		}

		for pi, lines := range pageLines {
			if out[i].Page > 0 && pages[pi].Number != out[i].Page {
				continue
			}
			custom, ean, ok := searchBlock(lines, out[i].Reference)
			if !ok {
				continue
			}
			if out[i].CustomCode == "" {
				out[i].CustomCode = custom
			}
			if out[i].CodeEAN == "" {
				out[i].CodeEAN = ean
			}
			break
		}
	}
	return out
}

func splitPages(pages []document.Page) [][]string {
	out := make([][]string, len(pages))
	for i, p := range pages {
		raw := strings.Split(p.Text, "\n")
		lines := make([]string, 0, len(raw))
		for _, l := range raw {
			if l = strings.Join(strings.Fields(l), " "); l != "" {
				lines = append(lines, l)
			}
		}
		out[i] = lines
	}
	return out
}

// searchBlock finds the item block of ref and returns the first customs code
// and EAN it contains.
func searchBlock(lines []string, ref string) (custom, ean string, found bool) {
	if ref == "" {
		return "", "", false
	}

	start := -1
	for i, l := range lines {
		if strings.HasPrefix(l, ref+" ") && anchorLine.MatchString(l) {
			start = i
			break
		}
	}
	if start < 0 {
		return "", "", false
	}

	end := min(start+1+backfillWindow, len(lines))
	for i := start + 1; i < end; i++ {
		if anchorLine.MatchString(lines[i]) {
			end = i
			break
		}
	}

	for _, l := range lines[start+1 : end] {
		if custom == "" {
			custom = customRun.FindString(l)
		}
		if ean == "" {
			ean = eanRun.FindString(l)
		}
	}
	return custom, ean, true
}
