// CLAUDE:SUMMARY Search-oriented text normalization: case fold, strip combining diacritics, drop punctuation, collapse whitespace.
package visit

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacritics is the Combining Diacritical Marks block (U+0300–U+036F).
// Only this block is stripped, so Latin accents disappear after NFD while
// marks from other scripts (Arabic harakat, Hebrew niqqud) survive.
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(combiningDiacritics)),
)

// Normalize canonicalizes text for comparison: lowercase, NFD decomposition
// with Latin diacritics stripped, every rune that is not a letter, number or
// whitespace removed, whitespace runs collapsed to a single space, and the
// result trimmed. Empty input yields "". The function is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(text))
	s, _, _ = transform.String(stripDiacritics, s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
		// Punctuation and symbols are dropped without acting as separators.
	}
	return b.String()
}
