// Package ledger is the serving layer: it keeps the full visit set in
// memory (reloaded from the store on demand), answers search/sort/count
// queries through the offload engine, and gates mutations on officer
// ownership.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/visit-ledger/pkg/engine"
	"github.com/hazyhaar/visit-ledger/pkg/store"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
)

// ErrForbidden is returned when a caller acts on a record they do not own.
var ErrForbidden = errors.New("caller does not own this visit")

// RoleAdmin may act on any record; officers only on their own.
const (
	RoleAdmin   = "admin"
	RoleOfficer = "officer"
)

// Caller is the authenticated identity injected by the outer auth layer.
type Caller struct {
	Officer string
	Role    string
}

func (c Caller) mayModify(r visit.Record) bool {
	if c.Role == RoleAdmin {
		return true
	}
	return visit.ExactOfficerMatch(r.OfficerName, c.Officer)
}

// Service owns the in-memory record snapshot and serves all queries.
type Service struct {
	mu      sync.RWMutex
	records []visit.Record

	db     *store.DB
	engine *engine.Engine
	logger *slog.Logger
}

// New creates a Service. Call Load before serving.
func New(db *store.DB, eng *engine.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, engine: eng, logger: logger}
}

// Load replaces the in-memory snapshot from the store (also hot reload).
func (s *Service) Load() error {
	records, err := s.db.List()
	if err != nil {
		return fmt.Errorf("load visits: %w", err)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	s.logger.Info("visits loaded", "count", len(records))
	return nil
}

// Snapshot returns a copy of the current record set.
func (s *Service) Snapshot() []visit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]visit.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the number of records in the snapshot.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// SearchResult is one filtered, sorted, paginated view of the record set.
type SearchResult struct {
	Records []visit.Record `json:"records"`
	Total   int            `json:"total"` // filtered count before paging
}

// Search filters the snapshot by c, sorts by orderBy/order when orderBy is
// non-empty, then applies offset/limit paging (limit <= 0 means no limit).
func (s *Service) Search(ctx context.Context, c visit.Criteria, orderBy, order string, offset, limit int) (*SearchResult, error) {
	records := s.Snapshot()

	filtered, err := s.engine.Filter(ctx, records, c)
	if err != nil {
		return nil, err
	}
	if orderBy != "" {
		filtered, err = s.engine.Sort(ctx, filtered, orderBy, order)
		if err != nil {
			return nil, err
		}
	}

	total := len(filtered)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	page := filtered[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	return &SearchResult{Records: page, Total: total}, nil
}

// CountQuestions counts discrete questions over the whole snapshot,
// optionally restricted by month (2-digit) and officer (exact match).
func (s *Service) CountQuestions(ctx context.Context, month, officer string) (int, error) {
	return s.engine.CountQuestions(ctx, s.Snapshot(), month, officer)
}

// OfficerStats summarizes per-officer visit and question counts.
func (s *Service) OfficerStats(month string) []visit.OfficerSummary {
	return visit.SummarizeOfficers(s.Snapshot(), month)
}

// Create stores a new visit and appends it to the snapshot.
func (s *Service) Create(r visit.Record) (visit.Record, error) {
	stored, err := s.db.Insert(r)
	if err != nil {
		return visit.Record{}, err
	}
	s.mu.Lock()
	s.records = append(s.records, stored)
	s.mu.Unlock()
	return stored, nil
}

// Update replaces a visit's fields. Officers may only touch their own
// records; the ownership check runs against the stored record, not the
// incoming payload, so a caller cannot reassign someone else's visit.
func (s *Service) Update(caller Caller, r visit.Record) error {
	current, err := s.db.Get(r.ID)
	if err != nil {
		return err
	}
	if !caller.mayModify(current) {
		return ErrForbidden
	}
	if err := s.db.Update(r); err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID == r.ID {
			s.records[i] = r
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Delete removes one visit, subject to the same ownership rule.
func (s *Service) Delete(caller Caller, id string) error {
	current, err := s.db.Get(id)
	if err != nil {
		return err
	}
	if !caller.mayModify(current) {
		return ErrForbidden
	}
	if err := s.db.Delete(id); err != nil {
		return err
	}
	s.removeFromSnapshot(id)
	return nil
}

// BatchDelete removes the caller's records among ids. Records the caller
// does not own are skipped, not failed — mirroring the dashboard's bulk
// delete, which quietly drops other officers' selections.
func (s *Service) BatchDelete(caller Caller, ids []string) (deleted, skipped []string, err error) {
	for _, id := range ids {
		current, err := s.db.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			skipped = append(skipped, id)
			continue
		}
		if err != nil {
			return deleted, skipped, err
		}
		if !caller.mayModify(current) {
			skipped = append(skipped, id)
			continue
		}
		if err := s.db.Delete(id); err != nil {
			return deleted, skipped, err
		}
		s.removeFromSnapshot(id)
		deleted = append(deleted, id)
	}
	if len(skipped) > 0 {
		s.logger.Warn("batch delete skipped records not owned by caller",
			"officer", caller.Officer, "skipped", len(skipped))
	}
	return deleted, skipped, nil
}

// Get fetches one visit by id from the store.
func (s *Service) Get(id string) (visit.Record, error) {
	return s.db.Get(id)
}

func (s *Service) removeFromSnapshot(id string) {
	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}
