package visit

import (
	"reflect"
	"testing"
)

func TestSortAscDesc(t *testing.T) {
	in := []Record{
		{ID: "1", Name: "zara"},
		{ID: "2", Name: "Ali"},
		{ID: "3", Name: "mohsin"},
	}

	asc := Sort(in, FieldName, OrderAsc)
	if !reflect.DeepEqual(ids(asc), []string{"2", "3", "1"}) {
		t.Errorf("asc: got %v", ids(asc))
	}

	desc := Sort(in, FieldName, OrderDesc)
	if !reflect.DeepEqual(ids(desc), []string{"1", "3", "2"}) {
		t.Errorf("desc: got %v", ids(desc))
	}
}

func TestSortDescIsReversedAsc(t *testing.T) {
	in := []Record{
		{ID: "1", Duration: "90"},
		{ID: "2", Duration: "15"},
		{ID: "3", Duration: "45"},
		{ID: "4", Duration: "30"},
	}
	asc := Sort(in, FieldDuration, OrderAsc)
	desc := Sort(in, FieldDuration, OrderDesc)

	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("desc is not reversed asc: asc=%v desc=%v", ids(asc), ids(desc))
		}
	}
}

func TestSortMissingFieldKeepsPosition(t *testing.T) {
	in := []Record{
		{ID: "1", OfficerName: "Zed"},
		{ID: "2", OfficerName: "Amy"},
		{ID: "3"}, // no officer name
	}
	got := Sort(in, FieldOfficerName, OrderAsc)
	if !reflect.DeepEqual(ids(got), []string{"2", "1", "3"}) {
		t.Errorf("got %v, want [2 1 3]: empty field must compare equal, not sink", ids(got))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := []Record{{ID: "1", Name: "b"}, {ID: "2", Name: "a"}}
	snapshot := make([]Record, len(in))
	copy(snapshot, in)

	out := Sort(in, FieldName, OrderAsc)

	if !reflect.DeepEqual(in, snapshot) {
		t.Error("Sort mutated its input")
	}
	if len(out) != len(in) {
		t.Errorf("Sort changed length: %d != %d", len(out), len(in))
	}
}

func TestSortCaseInsensitive(t *testing.T) {
	in := []Record{
		{ID: "1", Name: "banana"},
		{ID: "2", Name: "Apple"},
	}
	got := Sort(in, FieldName, OrderAsc)
	if got[0].ID != "2" {
		t.Errorf("case-insensitive asc: got %v", ids(got))
	}
}

func TestSortUnknownFieldIsNoOp(t *testing.T) {
	in := sampleRecords()
	got := Sort(in, "bogus", OrderAsc)
	if !reflect.DeepEqual(ids(got), ids(in)) {
		t.Errorf("unknown field reordered records: %v", ids(got))
	}
}
