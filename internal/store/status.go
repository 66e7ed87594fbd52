package store

import (
	"errors"

	"github.com/calvinalkan/flatdb/internal/rowjson"
)

// Status is the outcome class of a store operation.
//
// Callers that only want the legacy behaviour can treat every status other
// than [StatusOK] as "no data"; callers that care can tell a missing table
// from an empty one from a corrupt file.
type Status int

const (
	// StatusOK means the operation succeeded and, for reads, found rows.
	StatusOK Status = iota
	// StatusEmpty means a read found the table but no (matching) rows.
	StatusEmpty
	// StatusNotFound means the database, table, field or row is absent.
	StatusNotFound
	// StatusConflict means the database or table already exists.
	StatusConflict
	// StatusMalformed means the file or a stored row could not be read.
	StatusMalformed
	// StatusInvalid means the caller's input was rejected.
	StatusInvalid
	// StatusFailed means an I/O or other unexpected failure.
	StatusFailed
)

var statusNames = [...]string{
	StatusOK:        "ok",
	StatusEmpty:     "empty",
	StatusNotFound:  "not_found",
	StatusConflict:  "conflict",
	StatusMalformed: "malformed",
	StatusInvalid:   "invalid",
	StatusFailed:    "failed",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}

	return statusNames[s]
}

// StatusOf classifies an error returned by a [Store] operation.
// A nil error is [StatusOK].
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrDatabaseNotFound),
		errors.Is(err, ErrTableNotFound),
		errors.Is(err, ErrFieldNotFound),
		errors.Is(err, ErrNoMatch):
		return StatusNotFound
	case errors.Is(err, ErrDatabaseExists), errors.Is(err, ErrTableExists):
		return StatusConflict
	case errors.Is(err, ErrMalformed):
		return StatusMalformed
	case errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidColumns),
		errors.Is(err, ErrInvalidValue):
		return StatusInvalid
	default:
		return StatusFailed
	}
}

// Result is the outcome of a read.
type Result struct {
	Status Status
	// Fields are the table's column names, when the schema was found.
	Fields []string
	// Rows are the decoded rows in insertion order. Empty unless Status is
	// [StatusOK].
	Rows []rowjson.Object
}

// JSON encodes the rows as a JSON array of objects. Every status other than
// [StatusOK] encodes as the empty array.
func (r Result) JSON() ([]byte, error) {
	if r.Status != StatusOK {
		return []byte(rowjson.EmptyArray), nil
	}

	return rowjson.Marshal(r.Rows)
}

// resultOf builds the Result for err, keeping the fields already known.
func resultOf(fields []string, rows []rowjson.Object, err error) Result {
	status := StatusOf(err)
	if status == StatusOK && len(rows) == 0 {
		status = StatusEmpty
	}

	if status != StatusOK {
		rows = nil
	}

	return Result{Status: status, Fields: fields, Rows: rows}
}
