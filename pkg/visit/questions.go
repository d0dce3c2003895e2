package visit

import "regexp"

// questionMarker matches the (n) ordinals produced when several discrete
// questions are concatenated into one userQuestion field: "(1)… (2)…".
var questionMarker = regexp.MustCompile(`\(\d+\)`)

// CountQuestions sums the number of discrete questions across records.
// A record contributes the number of (n) markers in its userQuestion; a
// non-empty question without markers counts as one; an empty question
// counts as zero. month (2-digit) and officer restrict the counted
// records — officer attribution uses ExactOfficerMatch, never the fuzzy
// matcher. Empty restriction values mean no restriction.
func CountQuestions(records []Record, month, officer string) int {
	total := 0
	for _, r := range records {
		if month != "" && monthOf(r.Date) != month {
			continue
		}
		if officer != "" && !ExactOfficerMatch(r.OfficerName, officer) {
			continue
		}
		if r.UserQuestion == "" {
			continue
		}
		if n := len(questionMarker.FindAllString(r.UserQuestion, -1)); n > 0 {
			total += n
		} else {
			total++
		}
	}
	return total
}
