package visit

import (
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "v1", Name: "Ali Khan", Phone: "03001234567", Date: "2024-03-05", OfficerName: "Bilal", UserQuestion: "(1)q1 (2)q2"},
		{ID: "v2", Name: "Sara", Date: "2024-04-01", OfficerName: "Amy"},
		{ID: "v3", Name: "José García", Address: "Rua café 5", Date: "2024-03-20", OfficerName: "Bilal", UserQuestion: "single question"},
		{ID: "v4", Name: "No Date", OfficerName: "Zed", UserQuestion: "(1)only"},
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilterNoCriteriaIsIdentity(t *testing.T) {
	in := sampleRecords()
	got := Filter(in, Criteria{Category: CategoryAll})
	if !reflect.DeepEqual(ids(got), []string{"v1", "v2", "v3", "v4"}) {
		t.Errorf("empty criteria changed the set: %v", ids(got))
	}
}

func TestFilterMonthGate(t *testing.T) {
	in := sampleRecords()

	got := Filter(in, Criteria{Category: CategoryAll, Months: []string{"03"}})
	if !reflect.DeepEqual(ids(got), []string{"v1", "v3"}) {
		t.Errorf("months=[03]: got %v, want [v1 v3]", ids(got))
	}

	// The "all" sentinel disables the gate even alongside other months.
	got = Filter(in, Criteria{Category: CategoryAll, Months: []string{"03", MonthAll}})
	if len(got) != 4 {
		t.Errorf("months=[03 all]: got %d records, want 4", len(got))
	}

	// Records without a parseable date are excluded under an active gate.
	got = Filter(in, Criteria{Category: CategoryAll, Months: []string{"03", "04"}})
	for _, r := range got {
		if r.ID == "v4" {
			t.Error("record with no date survived an active month gate")
		}
	}
}

func TestFilterCategoryAll(t *testing.T) {
	in := sampleRecords()

	got := Filter(in, Criteria{Category: CategoryAll, Query: "ali"})
	if !reflect.DeepEqual(ids(got), []string{"v1"}) {
		t.Errorf("query=ali: got %v, want [v1]", ids(got))
	}

	// Any field participates: address hit, diacritic-insensitive.
	got = Filter(in, Criteria{Category: CategoryAll, Query: "cafe"})
	if !reflect.DeepEqual(ids(got), []string{"v3"}) {
		t.Errorf("query=cafe: got %v, want [v3]", ids(got))
	}
}

func TestFilterCategoryScoped(t *testing.T) {
	in := sampleRecords()

	got := Filter(in, Criteria{Category: CategoryClientName, Query: "bilal"})
	if len(got) != 0 {
		t.Errorf("officer name must not hit the clientName category: %v", ids(got))
	}

	got = Filter(in, Criteria{Category: CategoryOfficerName, Query: "bilal"})
	if !reflect.DeepEqual(ids(got), []string{"v1", "v3"}) {
		t.Errorf("category=officerName: got %v, want [v1 v3]", ids(got))
	}
}

func TestFilterUnknownCategoryPasses(t *testing.T) {
	in := sampleRecords()
	got := Filter(in, Criteria{Category: "serialNumber", Query: "whatever"})
	if len(got) != len(in) {
		t.Errorf("unknown category: got %d records, want %d", len(got), len(in))
	}
}

func TestFilterDateCategory(t *testing.T) {
	in := sampleRecords()

	// Exact date equality, free-text pipeline bypassed.
	got := Filter(in, Criteria{Category: CategoryDate, Date: "2024-03-05", Query: "ignored"})
	if !reflect.DeepEqual(ids(got), []string{"v1"}) {
		t.Errorf("date=2024-03-05: got %v, want [v1]", ids(got))
	}

	// No date chosen: pass-through (after the month gate).
	got = Filter(in, Criteria{Category: CategoryDate})
	if len(got) != len(in) {
		t.Errorf("date category without a date: got %d records, want %d", len(got), len(in))
	}
}

func TestFilterPreservesInputAndOrder(t *testing.T) {
	in := sampleRecords()
	snapshot := make([]Record, len(in))
	copy(snapshot, in)

	got := Filter(in, Criteria{Category: CategoryAll, Query: "khan"})

	if !reflect.DeepEqual(in, snapshot) {
		t.Error("Filter mutated its input")
	}
	// Output is a subsequence: every survivor appears in input order.
	last := -1
	for _, r := range got {
		idx := -1
		for i, orig := range in {
			if orig.ID == r.ID {
				idx = i
				break
			}
		}
		if idx <= last {
			t.Fatalf("output order %v does not follow input order", ids(got))
		}
		last = idx
	}
}

func TestFilterEndToEndScenario(t *testing.T) {
	records := []Record{
		{ID: "a", Name: "Ali Khan", Date: "2024-03-05", UserQuestion: "(1)q1 (2)q2"},
		{ID: "b", Name: "Sara", Date: "2024-04-01"},
	}

	got := Filter(records, Criteria{Category: CategoryAll, Query: "ali", Months: []string{"03"}})
	if !reflect.DeepEqual(ids(got), []string{"a"}) {
		t.Errorf("got %v, want [a]", ids(got))
	}

	if n := CountQuestions(records, "", ""); n != 2 {
		t.Errorf("CountQuestions = %d, want 2", n)
	}
}
