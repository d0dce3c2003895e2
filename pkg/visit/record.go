// Package visit holds the visit record model and the pure filter, sort,
// fuzzy-search and question-counting functions that power the dashboard.
// Everything in this package is side-effect free: callers pass a snapshot
// of records in and get new slices (or counts) back.
package visit

import (
	"regexp"
	"strings"
)

// Record is one logged client visit. All fields are free text as entered
// at the front desk; any of them may be empty.
type Record struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	Date          string `json:"date,omitempty"`    // YYYY-MM-DD
	TimeIn        string `json:"timeIn,omitempty"`  // HH:mm
	TimeOut       string `json:"timeOut,omitempty"` // HH:mm
	Duration      string `json:"duration,omitempty"`
	OfficerName   string `json:"officerName,omitempty"`
	UserQuestion  string `json:"userQuestion,omitempty"`
	OfficerAnswer string `json:"officerAnswer,omitempty"`
}

// Search categories accepted by Filter. CategoryAll searches every field;
// the rest scope the query to a single field. An unknown category passes
// every record through.
const (
	CategoryAll           = "all"
	CategoryClientName    = "clientName"
	CategoryContactNumber = "contactNumber"
	CategoryAddress       = "address"
	CategoryDuration      = "duration"
	CategoryOfficerName   = "officerName"
	CategoryQuestion      = "question"
	CategoryOfficerAnswer = "officerAnswer"
	CategoryDate          = "date"
)

// MonthAll is the month-set sentinel meaning "no month restriction".
const MonthAll = "all"

// Sortable / searchable field names, matching the JSON keys.
const (
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldDate          = "date"
	FieldTimeIn        = "timeIn"
	FieldTimeOut       = "timeOut"
	FieldDuration      = "duration"
	FieldOfficerName   = "officerName"
	FieldUserQuestion  = "userQuestion"
	FieldOfficerAnswer = "officerAnswer"
)

// FieldValue returns the named field of r, or "" for an unknown field.
func (r Record) FieldValue(field string) string {
	switch field {
	case FieldName:
		return r.Name
	case FieldPhone:
		return r.Phone
	case FieldAddress:
		return r.Address
	case FieldDate:
		return r.Date
	case FieldTimeIn:
		return r.TimeIn
	case FieldTimeOut:
		return r.TimeOut
	case FieldDuration:
		return r.Duration
	case FieldOfficerName:
		return r.OfficerName
	case FieldUserQuestion:
		return r.UserQuestion
	case FieldOfficerAnswer:
		return r.OfficerAnswer
	}
	return ""
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ValidDate reports whether s has the YYYY-MM-DD shape. Empty is allowed
// everywhere a date is optional, so callers check for "" themselves.
func ValidDate(s string) bool { return dateRe.MatchString(s) }

// ValidTime reports whether s has the HH:mm shape.
func ValidTime(s string) bool { return timeRe.MatchString(s) }

// monthOf extracts the 2-digit month component from a YYYY-MM-DD date.
// Returns "" for an empty or unparseable date.
func monthOf(date string) string {
	if date == "" {
		return ""
	}
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
