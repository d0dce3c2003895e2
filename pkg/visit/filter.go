package visit

// Criteria selects which records Filter keeps.
type Criteria struct {
	// Category scopes the query to one field, or CategoryAll for every
	// searchable field. Unknown categories pass everything through.
	Category string `json:"category"`
	// Query is the raw search text. Empty means no text restriction.
	Query string `json:"query"`
	// Date is an exact YYYY-MM-DD value, used only with CategoryDate.
	Date string `json:"date,omitempty"`
	// Months restricts records to the given 2-digit months. Empty, or a
	// set containing MonthAll, means no month restriction.
	Months []string `json:"months,omitempty"`
}

// Filter returns the subsequence of records matching c, in input order.
// The input slice is never mutated.
//
// The month gate runs first: with an active month set, records whose date
// is missing or unparseable are excluded. Then the query gate: an empty
// query passes everything. CategoryDate bypasses the fuzzy pipeline
// entirely — it filters by exact date equality when c.Date is set and is
// a pass-through otherwise.
func Filter(records []Record, c Criteria) []Record {
	monthSet := activeMonths(c.Months)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if monthSet != nil {
			m := monthOf(r.Date)
			if m == "" || !monthSet[m] {
				continue
			}
		}
		if matchesQuery(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// activeMonths converts the month list into a lookup set, or nil when no
// month restriction applies.
func activeMonths(months []string) map[string]bool {
	if len(months) == 0 {
		return nil
	}
	set := make(map[string]bool, len(months))
	for _, m := range months {
		if m == MonthAll {
			return nil
		}
		set[m] = true
	}
	return set
}

func matchesQuery(r Record, c Criteria) bool {
	if c.Category == CategoryDate {
		if c.Date == "" {
			return true
		}
		return r.Date == c.Date
	}

	if c.Query == "" {
		return true
	}

	switch c.Category {
	case CategoryAll:
		return FuzzyMatch(r.Name, c.Query) ||
			FuzzyMatch(r.Phone, c.Query) ||
			FuzzyMatch(r.Address, c.Query) ||
			FuzzyMatch(r.Duration, c.Query) ||
			FuzzyMatch(r.OfficerName, c.Query) ||
			FuzzyMatch(r.UserQuestion, c.Query) ||
			FuzzyMatch(r.Date, c.Query) ||
			FuzzyMatch(r.OfficerAnswer, c.Query)
	case CategoryClientName:
		return FuzzyMatch(r.Name, c.Query)
	case CategoryContactNumber:
		return FuzzyMatch(r.Phone, c.Query)
	case CategoryAddress:
		return FuzzyMatch(r.Address, c.Query)
	case CategoryDuration:
		return FuzzyMatch(r.Duration, c.Query)
	case CategoryOfficerName:
		return FuzzyMatch(r.OfficerName, c.Query)
	case CategoryQuestion:
		return FuzzyMatch(r.UserQuestion, c.Query)
	case CategoryOfficerAnswer:
		return FuzzyMatch(r.OfficerAnswer, c.Query)
	default:
		return true
	}
}
