package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugSeparator joins the words of a slug
const SlugSeparator = '-'

// Slugify derives a URL-safe slug from a display name.
// The name is lower-cased, accents are folded to their base letter and every
// run of characters that is not a letter or digit becomes a single separator.
// Leading and trailing separators are dropped. Slugify is idempotent.
func Slugify(name string) string {
	// transformers are stateful, so the chain is built per call
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lowered := strings.ToLower(name)
	folded, _, err := transform.String(folder, lowered)
	if err != nil {
		folded = lowered
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteRune(SlugSeparator)
		}
		pendingSep = false
		b.WriteRune(r)
	}
	return b.String()
}
