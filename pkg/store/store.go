// CLAUDE:SUMMARY SQLite persistence for visit records: schema, CRUD, and snapshot listing for the search engine.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a visit id does not exist.
var ErrNotFound = errors.New("visit not found")

// DB manages the visits SQLite table. List hands out snapshot slices, so
// the filter/sort engine never shares memory with the store.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// visits table exists. ":memory:" works for tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open visits db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS visits (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		phone          TEXT NOT NULL DEFAULT '',
		address        TEXT NOT NULL DEFAULT '',
		date           TEXT NOT NULL DEFAULT '',
		time_in        TEXT NOT NULL DEFAULT '',
		time_out       TEXT NOT NULL DEFAULT '',
		duration       TEXT NOT NULL DEFAULT '',
		officer_name   TEXT NOT NULL DEFAULT '',
		user_question  TEXT NOT NULL DEFAULT '',
		officer_answer TEXT NOT NULL DEFAULT '',
		created_at     INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create visits table: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// Insert stores a new visit. A missing ID is assigned a fresh UUID.
// Returns the stored record.
func (s *DB) Insert(r visit.Record) (visit.Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := validate(r); err != nil {
		return visit.Record{}, err
	}

	const q = `INSERT INTO visits
		(id, name, phone, address, date, time_in, time_out, duration, officer_name, user_question, officer_answer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(q, r.ID, r.Name, r.Phone, r.Address, r.Date, r.TimeIn, r.TimeOut,
		r.Duration, r.OfficerName, r.UserQuestion, r.OfficerAnswer, time.Now().Unix())
	if err != nil {
		return visit.Record{}, fmt.Errorf("insert visit %s: %w", r.ID, err)
	}
	return r, nil
}

// Update replaces the stored fields of the visit with r.ID.
func (s *DB) Update(r visit.Record) error {
	if err := validate(r); err != nil {
		return err
	}

	const q = `UPDATE visits SET
		name = ?, phone = ?, address = ?, date = ?, time_in = ?, time_out = ?,
		duration = ?, officer_name = ?, user_question = ?, officer_answer = ?
		WHERE id = ?`
	res, err := s.db.Exec(q, r.Name, r.Phone, r.Address, r.Date, r.TimeIn, r.TimeOut,
		r.Duration, r.OfficerName, r.UserQuestion, r.OfficerAnswer, r.ID)
	if err != nil {
		return fmt.Errorf("update visit %s: %w", r.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a visit by id.
func (s *DB) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM visits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete visit %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get fetches a single visit by id.
func (s *DB) Get(id string) (visit.Record, error) {
	row := s.db.QueryRow(`SELECT id, name, phone, address, date, time_in, time_out,
		duration, officer_name, user_question, officer_answer FROM visits WHERE id = ?`, id)
	r, err := scanVisit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return visit.Record{}, ErrNotFound
	}
	if err != nil {
		return visit.Record{}, fmt.Errorf("get visit %s: %w", id, err)
	}
	return r, nil
}

// List returns every visit in insertion order as a fresh snapshot slice.
func (s *DB) List() ([]visit.Record, error) {
	rows, err := s.db.Query(`SELECT id, name, phone, address, date, time_in, time_out,
		duration, officer_name, user_question, officer_answer FROM visits ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []visit.Record
	for rows.Next() {
		r, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return out, nil
}

// Count returns the number of stored visits.
func (s *DB) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM visits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVisit(sc scanner) (visit.Record, error) {
	var r visit.Record
	err := sc.Scan(&r.ID, &r.Name, &r.Phone, &r.Address, &r.Date, &r.TimeIn, &r.TimeOut,
		&r.Duration, &r.OfficerName, &r.UserQuestion, &r.OfficerAnswer)
	return r, err
}

// validate rejects malformed date/time shapes. Empty values are fine — the
// engine degrades gracefully on missing fields, but a present value must
// have the shape the month gate and the dashboard expect.
func validate(r visit.Record) error {
	if r.Date != "" && !visit.ValidDate(r.Date) {
		return fmt.Errorf("visit %s: date %q is not YYYY-MM-DD", r.ID, r.Date)
	}
	if r.TimeIn != "" && !visit.ValidTime(r.TimeIn) {
		return fmt.Errorf("visit %s: timeIn %q is not HH:mm", r.ID, r.TimeIn)
	}
	if r.TimeOut != "" && !visit.ValidTime(r.TimeOut) {
		return fmt.Errorf("visit %s: timeOut %q is not HH:mm", r.ID, r.TimeOut)
	}
	return nil
}
