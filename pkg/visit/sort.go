package visit

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sort returns a new slice of records ordered by the named field using
// locale-aware collation on the lowercased value. When the field is empty
// on either side of a comparison the two records compare equal, so
// records missing the field keep their relative input position instead of
// sinking to one end. Any direction other than OrderDesc sorts ascending.
func Sort(records []Record, field, direction string) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	// Collators are not safe for concurrent use; one per call.
	col := collate.New(language.Und)

	sort.SliceStable(out, func(i, j int) bool {
		a := out[i].FieldValue(field)
		b := out[j].FieldValue(field)
		if a == "" || b == "" {
			return false
		}
		cmp := col.CompareString(strings.ToLower(a), strings.ToLower(b))
		if direction == OrderDesc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}
