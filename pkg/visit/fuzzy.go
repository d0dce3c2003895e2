package visit

import "strings"

// FuzzyMatch reports whether every word of search approximately occurs in
// text. Both sides are normalized first. An empty search matches anything;
// an empty text matches nothing (for a non-empty search). Words match when
// they occur as a literal substring, or — for words of at least two
// characters — when some word of the text aligns within the error budget
// of fuzzyWordMatch. Multi-word searches use AND semantics: one failing
// word fails the whole match.
func FuzzyMatch(text, search string) bool {
	if search == "" {
		return true
	}
	if text == "" {
		return false
	}

	normText := Normalize(text)
	normSearch := Normalize(search)

	for _, searchWord := range strings.Fields(normSearch) {
		if strings.Contains(normText, searchWord) {
			continue
		}
		if len([]rune(searchWord)) < 2 {
			return false // single characters only match as literal substrings
		}
		matched := false
		for _, word := range strings.Split(normText, " ") {
			if fuzzyWordMatch(searchWord, word) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// fuzzyWordMatch is a one-directional alignment scan, not an edit distance.
// The candidate word is walked left to right; a pointer into the search
// word advances only on character equality and every mismatch costs one
// error. The budget is one error per four characters of the longer word,
// and the search pointer must cover at least 75% of the search word by the
// end of the scan. The scan is asymmetric: insertions in the candidate are
// cheap, transpositions are not.
func fuzzyWordMatch(searchWord, word string) bool {
	sr := []rune(searchWord)
	wr := []rune(word)
	if len(wr) < 2 {
		return false
	}

	maxLen := len(sr)
	if len(wr) > maxLen {
		maxLen = len(wr)
	}
	maxDistance := maxLen / 4

	errors := 0
	searchIndex := 0
	for i := 0; i < len(wr) && errors <= maxDistance; i++ {
		if searchIndex < len(sr) && sr[searchIndex] == wr[i] {
			searchIndex++
		} else {
			errors++
		}
	}

	return errors <= maxDistance && float64(searchIndex) >= float64(len(sr))*0.75
}
