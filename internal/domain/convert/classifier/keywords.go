// Package classifier decides what kind of document a PDF is and which supplier
// issued it, using keyword detection over the first page.
package classifier

import (
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize upper-cases s and strips diacritics so that "Accusé de réception"
// and "ACCUSE DE RECEPTION" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}

// KeywordSet finds which of a fixed set of keywords occur in a text in a single
// pass, using the Aho-Corasick algorithm.
type KeywordSet struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// NewKeywordSet builds a matcher for the given keywords. Keywords are normalized
// the same way as the searched text; duplicates and blanks are ignored.
func NewKeywordSet(keywords ...string) *KeywordSet {
	k := &KeywordSet{}
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		clean := Normalize(strings.TrimSpace(kw))
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		k.keywords = append(k.keywords, clean)
	}

	if len(k.keywords) > 0 {
		// Convert string patterns to [][]byte for the Aho-Corasick matcher
		patterns := make([][]byte, len(k.keywords))
		for i, kw := range k.keywords {
			patterns[i] = []byte(kw)
		}
		k.matcher = ahocorasick.NewMatcher(patterns)
	}
	return k
}

// Find returns the set of keywords present in text.
func (k *KeywordSet) Find(text string) map[string]bool {
	found := make(map[string]bool)
	if k.matcher == nil {
		return found
	}
	for _, idx := range k.matcher.Match([]byte(Normalize(text))) {
		found[k.keywords[idx]] = true
	}
	return found
}
