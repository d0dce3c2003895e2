package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/visit-ledger/pkg/engine"
	"github.com/hazyhaar/visit-ledger/pkg/store"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "visits.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.New()
	t.Cleanup(eng.Close)

	svc := New(db, eng, nil)

	seed := []visit.Record{
		{Name: "Ali Khan", Date: "2024-03-05", OfficerName: "Bilal", UserQuestion: "(1)q1 (2)q2"},
		{Name: "Sara", Date: "2024-04-01", OfficerName: "Amy", UserQuestion: "plain"},
		{Name: "José García", Date: "2024-03-20", OfficerName: "Bilal"},
	}
	for _, r := range seed {
		if _, err := db.Insert(r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := svc.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc
}

func TestSearchFilterSortPage(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	res, err := svc.Search(ctx, visit.Criteria{Category: visit.CategoryAll, Months: []string{"03"}},
		visit.FieldName, visit.OrderAsc, 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 2 || len(res.Records) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", res.Total, len(res.Records))
	}
	if res.Records[0].Name != "Ali Khan" || res.Records[1].Name != "José García" {
		t.Errorf("sorted names: %q, %q", res.Records[0].Name, res.Records[1].Name)
	}

	// Paging: second page of size 1 out of 2, total still reports 2.
	res, err = svc.Search(ctx, visit.Criteria{Category: visit.CategoryAll, Months: []string{"03"}},
		visit.FieldName, visit.OrderAsc, 1, 1)
	if err != nil {
		t.Fatalf("Search page: %v", err)
	}
	if res.Total != 2 || len(res.Records) != 1 || res.Records[0].Name != "José García" {
		t.Errorf("page: total=%d records=%+v", res.Total, res.Records)
	}

	// Offset past the end yields an empty page, not an error.
	res, err = svc.Search(ctx, visit.Criteria{Category: visit.CategoryAll}, "", "", 99, 10)
	if err != nil {
		t.Fatalf("Search offset: %v", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("offset past end: %+v", res.Records)
	}
}

func TestCountQuestionsAndStats(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	n, err := svc.CountQuestions(ctx, "", "")
	if err != nil {
		t.Fatalf("CountQuestions: %v", err)
	}
	if n != 3 { // 2 markers + 1 unmarked + 0 empty
		t.Errorf("CountQuestions = %d, want 3", n)
	}

	stats := svc.OfficerStats("03")
	if len(stats) != 2 {
		t.Fatalf("got %d officers, want 2", len(stats))
	}
	for _, s := range stats {
		if s.Officer == "Bilal" && (s.Visits != 2 || s.Questions != 2) {
			t.Errorf("Bilal in 03: %+v", s)
		}
		if s.Officer == "Amy" && s.Visits != 0 {
			t.Errorf("Amy in 03: %+v", s)
		}
	}
}

func TestCreateUpdatesSnapshot(t *testing.T) {
	svc := setupService(t)

	r, err := svc.Create(visit.Record{Name: "New Client", OfficerName: "Amy"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == "" {
		t.Fatal("Create did not assign an id")
	}
	if svc.Count() != 4 {
		t.Errorf("snapshot count = %d, want 4", svc.Count())
	}
}

func TestOwnershipGates(t *testing.T) {
	svc := setupService(t)
	records := svc.Snapshot()

	var bilalVisit visit.Record
	for _, r := range records {
		if r.OfficerName == "Bilal" {
			bilalVisit = r
			break
		}
	}

	amy := Caller{Officer: "Amy", Role: RoleOfficer}
	bilal := Caller{Officer: "bilal", Role: RoleOfficer} // case-insensitive owner
	admin := Caller{Officer: "root", Role: RoleAdmin}

	if err := svc.Delete(amy, bilalVisit.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Amy deleting Bilal's visit: err = %v, want ErrForbidden", err)
	}

	bilalVisit.OfficerAnswer = "done"
	if err := svc.Update(bilal, bilalVisit); err != nil {
		t.Errorf("owner update failed: %v", err)
	}
	if err := svc.Delete(admin, bilalVisit.ID); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
	if svc.Count() != 2 {
		t.Errorf("snapshot count = %d, want 2", svc.Count())
	}
}

func TestBatchDeleteSkipsForeignRecords(t *testing.T) {
	svc := setupService(t)
	records := svc.Snapshot()

	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	ids = append(ids, "no-such-id")

	bilal := Caller{Officer: "Bilal", Role: RoleOfficer}
	deleted, skipped, err := svc.BatchDelete(bilal, ids)
	if err != nil {
		t.Fatalf("BatchDelete: %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("deleted %d, want 2 (Bilal's own visits)", len(deleted))
	}
	if len(skipped) != 2 { // Amy's visit + unknown id
		t.Errorf("skipped %d, want 2", len(skipped))
	}
	if svc.Count() != 1 {
		t.Errorf("snapshot count = %d, want 1", svc.Count())
	}
}

func TestLoadIsHotReload(t *testing.T) {
	svc := setupService(t)

	// Writes that bypass the service become visible after Load.
	if _, err := svc.db.Insert(visit.Record{Name: "outsider"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if svc.Count() != 3 {
		t.Errorf("snapshot should not see raw store writes yet: %d", svc.Count())
	}
	if err := svc.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if svc.Count() != 4 {
		t.Errorf("after reload: %d, want 4", svc.Count())
	}
}
