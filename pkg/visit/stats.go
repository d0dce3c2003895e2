package visit

import "sort"

// OfficerSummary aggregates one officer's activity.
type OfficerSummary struct {
	Officer   string `json:"officer"`
	Visits    int    `json:"visits"`
	Questions int    `json:"questions"`
}

// CountVisitsByOfficer counts the records attributed to officer, optionally
// restricted to a 2-digit month. Attribution is exact, see ExactOfficerMatch.
func CountVisitsByOfficer(records []Record, officer, month string) int {
	n := 0
	for _, r := range records {
		if !ExactOfficerMatch(r.OfficerName, officer) {
			continue
		}
		if month != "" && monthOf(r.Date) != month {
			continue
		}
		n++
	}
	return n
}

// SummarizeOfficers returns per-officer visit and question counts for every
// distinct officer appearing in records, sorted by officer name. month,
// when non-empty, restricts both counts to that 2-digit month.
func SummarizeOfficers(records []Record, month string) []OfficerSummary {
	seen := make(map[string]string) // lowercase key -> display name
	for _, r := range records {
		if r.OfficerName == "" {
			continue
		}
		key := normalizeOfficerKey(r.OfficerName)
		if _, ok := seen[key]; !ok {
			seen[key] = r.OfficerName
		}
	}

	out := make([]OfficerSummary, 0, len(seen))
	for _, name := range seen {
		out = append(out, OfficerSummary{
			Officer:   name,
			Visits:    CountVisitsByOfficer(records, name, month),
			Questions: CountQuestions(records, month, name),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Officer < out[j].Officer })
	return out
}
