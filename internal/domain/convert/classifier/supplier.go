package classifier

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Supplier names a coordinate template and the letterhead aliases that identify it.
type Supplier struct {
	Key     string
	Aliases []string
}

// DefaultSuppliers lists the known suppliers. Earlier entries win when a page
// names several (a Dior invoice also mentions LVMH).
var DefaultSuppliers = []Supplier{
	{Key: "dior", Aliases: []string{"CHRISTIAN DIOR", "PARFUMS CHRISTIAN DIOR"}},
	{Key: "bulgari", Aliases: []string{"BULGARI", "BVLGARI"}},
	{Key: "interparfums", Aliases: []string{"INTERPARFUMS", "INTER PARFUMS"}},
	{Key: "coty", Aliases: []string{"COTY"}},
	{Key: "lvmh", Aliases: []string{"LVMH", "MOET HENNESSY"}},
}

const (
	// maxLetterheadLen skips body lines when fuzzy matching; letterheads are short.
	maxLetterheadLen = 40
	// minFuzzyAliasLen is the shortest alias compared by edit distance. One edit
	// away from COTY are ordinary words such as COPY and CITY.
	minFuzzyAliasLen = 6
)

// SupplierDetector identifies the issuing supplier of a document.
type SupplierDetector struct {
	suppliers []Supplier
	exact     *KeywordSet
	owner     map[string]int // normalized alias -> index into suppliers
}

// NewSupplierDetector builds a detector for the given suppliers.
func NewSupplierDetector(suppliers []Supplier) *SupplierDetector {
	d := &SupplierDetector{
		suppliers: suppliers,
		owner:     make(map[string]int),
	}

	var aliases []string
	for i, s := range suppliers {
		for _, a := range s.Aliases {
			n := Normalize(a)
			if _, ok := d.owner[n]; !ok {
				d.owner[n] = i
			}
			aliases = append(aliases, a)
		}
	}
	d.exact = NewKeywordSet(aliases...)
	return d
}

// Detect returns the key of the supplier named in text, or "" when none is found.
//
// Exact alias hits are tried first. Short lines are then compared with spacing
// and punctuation removed, which catches letterheads printed letter by letter,
// and finally by edit distance, which catches a misread glyph or two.
func (d *SupplierDetector) Detect(text string) string {
	best := -1
	for alias := range d.exact.Find(text) {
		if i := d.owner[alias]; best < 0 || i < best {
			best = i
		}
	}
	if best >= 0 {
		return d.suppliers[best].Key
	}

	for _, line := range strings.Split(text, "\n") {
		compact := compactLetters(line)
		if compact == "" || len(compact) > maxLetterheadLen {
			continue
		}
		for _, s := range d.suppliers {
			for _, a := range s.Aliases {
				alias := compactLetters(a)
				if strings.Contains(compact, alias) {
					return s.Key
				}
				if len(alias) < minFuzzyAliasLen {
					continue
				}
				if fuzzy.LevenshteinDistance(alias, compact) <= len(alias)/4 {
					return s.Key
				}
			}
		}
	}
	return ""
}

// compactLetters keeps only letters and digits of the normalized line.
func compactLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, Normalize(s))
}
