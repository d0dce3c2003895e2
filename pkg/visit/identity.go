package visit

import "strings"

// ExactOfficerMatch reports whether two officer names denote the same
// officer: trimmed, case-insensitive equality and nothing more. This check
// gates edit/delete permission and per-officer statistics, so it must stay
// strict — routing it through FuzzyMatch would let one officer act on
// another officer's records.
func ExactOfficerMatch(recordName, currentName string) bool {
	if recordName == "" || currentName == "" {
		return false
	}
	return normalizeOfficerKey(recordName) == normalizeOfficerKey(currentName)
}

func normalizeOfficerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
