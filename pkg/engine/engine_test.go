package engine

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/visit-ledger/pkg/visit"
)

func testRecords() []visit.Record {
	return []visit.Record{
		{ID: "v1", Name: "Ali Khan", Date: "2024-03-05", OfficerName: "Bilal", UserQuestion: "(1)q1 (2)q2"},
		{ID: "v2", Name: "Sara", Date: "2024-04-01", OfficerName: "Amy", UserQuestion: "plain"},
		{ID: "v3", Name: "José", Date: "2024-03-20", OfficerName: "Bilal"},
	}
}

func TestEngineFilterMatchesDirectCall(t *testing.T) {
	e := New()
	defer e.Close()

	records := testRecords()
	c := visit.Criteria{Category: visit.CategoryAll, Query: "ali", Months: []string{"03"}}

	got, err := e.Filter(context.Background(), records, c)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := visit.Filter(records, c)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("worker path diverged from direct call:\n got %+v\nwant %+v", got, want)
	}
}

func TestEngineSortMatchesDirectCall(t *testing.T) {
	e := New()
	defer e.Close()

	records := testRecords()
	got, err := e.Sort(context.Background(), records, visit.FieldName, visit.OrderAsc)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := visit.Sort(records, visit.FieldName, visit.OrderAsc)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("worker path diverged from direct call:\n got %+v\nwant %+v", got, want)
	}
}

func TestEngineCountMatchesDirectCall(t *testing.T) {
	e := New()
	defer e.Close()

	records := testRecords()
	got, err := e.CountQuestions(context.Background(), records, "", "Bilal")
	if err != nil {
		t.Fatalf("CountQuestions: %v", err)
	}
	if want := visit.CountQuestions(records, "", "Bilal"); got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestEngineClosedComputesSynchronously(t *testing.T) {
	e := New()
	e.Close()

	records := testRecords()
	got, err := e.Filter(context.Background(), records, visit.Criteria{Category: visit.CategoryAll, Query: "sara"})
	if err != nil {
		t.Fatalf("Filter after Close: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v2" {
		t.Errorf("synchronous path: got %+v", got)
	}
}

func TestEngineTimeoutFallsBack(t *testing.T) {
	// A zero timeout forces the fallback on every call; results must be
	// identical to the worker path.
	e := New(WithTimeouts(0, 0, 0))
	defer e.Close()

	records := testRecords()
	got, err := e.Filter(context.Background(), records, visit.Criteria{Category: visit.CategoryOfficerName, Query: "bilal"})
	if err != nil {
		t.Fatalf("Filter with zero timeout: %v", err)
	}
	want := visit.Filter(records, visit.Criteria{Category: visit.CategoryOfficerName, Query: "bilal"})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fallback diverged from direct call: %+v", got)
	}
}

func TestEngineContextCancellation(t *testing.T) {
	e := New()
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Filter(ctx, testRecords(), visit.Criteria{}); err == nil {
		t.Error("cancelled context should surface as an error")
	}
}

func TestEngineConcurrentDispatchesDoNotCrossResolve(t *testing.T) {
	e := New()
	defer e.Close()

	records := testRecords()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Alternate two same-action queries; responses are correlated
			// by request id, so each caller must see its own result.
			q := "ali"
			wantID := "v1"
			if i%2 == 1 {
				q = "sara"
				wantID = "v2"
			}
			got, err := e.Filter(context.Background(), records, visit.Criteria{Category: visit.CategoryAll, Query: q})
			if err != nil {
				t.Errorf("Filter(%q): %v", q, err)
				return
			}
			if len(got) != 1 || got[0].ID != wantID {
				t.Errorf("Filter(%q) = %v, want [%s]", q, got, wantID)
			}
		}(i)
	}
	wg.Wait()
}

func TestEngineDoesNotAliasCallerSlice(t *testing.T) {
	e := New()
	defer e.Close()

	records := testRecords()
	snapshot := make([]visit.Record, len(records))
	copy(snapshot, records)

	if _, err := e.Sort(context.Background(), records, visit.FieldName, visit.OrderDesc); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !reflect.DeepEqual(records, snapshot) {
		t.Error("dispatch mutated the caller's slice")
	}
}

func TestRunUnknownAction(t *testing.T) {
	resp := run(request{id: "x", action: "bogus"})
	if resp.err == nil {
		t.Error("unknown action must produce an error response")
	}
}

func TestComputationErrorUnwrap(t *testing.T) {
	e := New()
	defer e.Close()

	// The error path: deliver an error response to a registered caller.
	resp := run(request{id: "x", action: "bogus"})
	ce := &ComputationError{Action: "bogus", Err: resp.err}
	if ce.Unwrap() != resp.err {
		t.Error("Unwrap must expose the worker error")
	}
}

func TestSessionGenerations(t *testing.T) {
	var s Session

	g1 := s.Issue()
	if !s.Current(g1) {
		t.Error("freshly issued generation must be current")
	}

	g2 := s.Issue()
	if s.Current(g1) {
		t.Error("stale generation must not be current after a newer issue")
	}
	if !s.Current(g2) {
		t.Error("latest generation must be current")
	}
	if g2 <= g1 {
		t.Errorf("generations must increase: %d then %d", g1, g2)
	}
}

func TestEngineCloseIsIdempotent(t *testing.T) {
	e := New()
	if _, err := e.CountQuestions(context.Background(), testRecords(), "", ""); err != nil {
		t.Fatalf("CountQuestions: %v", err)
	}
	e.Close()
	e.Close() // second close must not panic

	// And the engine still answers, synchronously.
	n, err := e.CountQuestions(context.Background(), testRecords(), "03", "")
	if err != nil {
		t.Fatalf("CountQuestions after Close: %v", err)
	}
	if want := visit.CountQuestions(testRecords(), "03", ""); n != want {
		t.Errorf("got %d, want %d", n, want)
	}
}

func TestEngineManyRecords(t *testing.T) {
	e := New()
	defer e.Close()

	var records []visit.Record
	for i := 0; i < 5000; i++ {
		r := visit.Record{ID: string(rune('a' + i%26)), Name: "Visitor"}
		if i%3 == 0 {
			r.Name = "Ali Khan"
		}
		records = append(records, r)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := e.Filter(context.Background(), records, visit.Criteria{Category: visit.CategoryClientName, Query: "ali"})
		if err != nil {
			t.Errorf("Filter: %v", err)
			return
		}
		if len(got) != len(records)/3+1 {
			t.Errorf("got %d matches, want %d", len(got), len(records)/3+1)
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("filter over 5000 records did not complete")
	}
}
