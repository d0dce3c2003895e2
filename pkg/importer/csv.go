// Package importer bulk-loads visit records from CSV exports into the
// store. The source layout (delimiter, text encoding, header row, column
// names) is described by a Format, typically read from a YAML file next to
// the data.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hazyhaar/visit-ledger/pkg/store"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Format describes a CSV source.
type Format struct {
	Delimiter string            `yaml:"delimiter"`  // default ","
	Encoding  string            `yaml:"encoding"`   // IANA name, default UTF-8
	HasHeader bool              `yaml:"has_header"` // first row is a header
	Columns   map[string]string `yaml:"columns"`    // record field -> column header
}

// Importable record fields, i.e. valid keys of Format.Columns.
var recordFields = []string{
	visit.FieldName, visit.FieldPhone, visit.FieldAddress, visit.FieldDate,
	visit.FieldTimeIn, visit.FieldTimeOut, visit.FieldDuration,
	visit.FieldOfficerName, visit.FieldUserQuestion, visit.FieldOfficerAnswer,
}

// DefaultFormat describes a UTF-8 comma-separated export whose header row
// uses the record field names themselves.
func DefaultFormat() *Format {
	cols := make(map[string]string, len(recordFields))
	for _, f := range recordFields {
		cols[f] = f
	}
	return &Format{
		Delimiter: ",",
		Encoding:  "utf-8",
		HasHeader: true,
		Columns:   cols,
	}
}

// LoadFormat reads a Format from a YAML file.
func LoadFormat(path string) (*Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read format %s: %w", path, err)
	}
	var f Format
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse format %s: %w", path, err)
	}
	for field := range f.Columns {
		if !validField(field) {
			return nil, fmt.Errorf("format %s: unknown record field %q", path, field)
		}
	}
	return &f, nil
}

func validField(name string) bool {
	for _, f := range recordFields {
		if f == name {
			return true
		}
	}
	return false
}

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
}

// ImportFile reads the CSV at path per f and inserts each row as a visit.
// Rows that fail validation (malformed dates or times) are skipped and
// logged, never abort the batch.
func ImportFile(path string, f *Format, db *store.DB, logger *slog.Logger) (*Result, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer src.Close()
	return Import(src, f, db, logger)
}

// Import is ImportFile over an arbitrary reader.
func Import(src io.Reader, f *Format, db *store.DB, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Transcode non-UTF-8 encodings declared in the format.
	if enc := f.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		src = transform.NewReader(src, e.NewDecoder())
	}

	r := csv.NewReader(src)
	if f.Delimiter != "" {
		r.Comma = []rune(f.Delimiter)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	// Resolve field -> column index, from the header when present or from
	// numeric column names ("0", "1", ...) otherwise.
	fieldIdx, err := resolveColumns(r, f)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		rec := visit.Record{}
		for field, idx := range fieldIdx {
			if idx >= len(row) {
				continue
			}
			setField(&rec, field, strings.TrimSpace(row[idx]))
		}

		if _, err := db.Insert(rec); err != nil {
			logger.Warn("row skipped", "line", line, "error", err)
			res.Skipped++
			continue
		}
		res.Imported++
	}

	logger.Info("csv import finished", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func resolveColumns(r *csv.Reader, f *Format) (map[string]int, error) {
	fieldIdx := make(map[string]int, len(f.Columns))

	if !f.HasHeader {
		for field, col := range f.Columns {
			var idx int
			if _, err := fmt.Sscanf(col, "%d", &idx); err != nil {
				return nil, fmt.Errorf("field %q: column %q is not an index and no header row is declared", field, col)
			}
			fieldIdx[field] = idx
		}
		return fieldIdx, nil
	}

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	for field, col := range f.Columns {
		found := false
		for i, h := range header {
			if h == col {
				fieldIdx[field] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("field %q: column %q not found in header %v", field, col, header)
		}
	}
	return fieldIdx, nil
}

func setField(r *visit.Record, field, value string) {
	switch field {
	case visit.FieldName:
		r.Name = value
	case visit.FieldPhone:
		r.Phone = value
	case visit.FieldAddress:
		r.Address = value
	case visit.FieldDate:
		r.Date = value
	case visit.FieldTimeIn:
		r.TimeIn = value
	case visit.FieldTimeOut:
		r.TimeOut = value
	case visit.FieldDuration:
		r.Duration = value
	case visit.FieldOfficerName:
		r.OfficerName = value
	case visit.FieldUserQuestion:
		r.UserQuestion = value
	case visit.FieldOfficerAnswer:
		r.OfficerAnswer = value
	}
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
