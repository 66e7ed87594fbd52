package store

import (
	"errors"
	"strings"

	"github.com/calvinalkan/flatdb/internal/naming"
)

// Sentinel errors. Use [errors.Is] to check for them, or [StatusOf] to map
// any returned error to a result variant.
var (
	ErrDatabaseNotFound = errors.New("database not found")
	ErrDatabaseExists   = errors.New("database already exists")
	ErrTableNotFound    = errors.New("table not found")
	ErrTableExists      = errors.New("table already exists")
	ErrFieldNotFound    = errors.New("field not found")
	ErrNoMatch          = errors.New("no matching rows")

	// ErrInvalidName is returned when a name sanitizes to nothing.
	ErrInvalidName = naming.ErrInvalidName

	// ErrInvalidColumns is returned for an empty column list, a column/type
	// count mismatch, a duplicate column, or a column without a type.
	ErrInvalidColumns = errors.New("invalid columns")

	// ErrInvalidValue is returned for values the file format cannot hold:
	// rows containing a newline, update values containing a comma, and any
	// value or column type containing a section marker or starting with
	// "# Table:".
	ErrInvalidValue = errors.New("invalid value")

	// ErrMalformed wraps parse failures of a database file and rows whose
	// value count does not match the table's columns.
	ErrMalformed = errors.New("malformed data")
)

// Error is the error type returned by all [Store] operations.
//
// The underlying error message appears first, followed by context:
//
//	update: table not found (db=shop table=items)
//
// Use [errors.As] to extract the fields and [errors.Is] for sentinels.
type Error struct {
	// Op is the store operation, e.g. "insert".
	Op string

	// Database is the sanitized database name, when known.
	Database string

	// Table is the sanitized table name, when the operation has one.
	Table string

	// Err is the underlying cause.
	Err error
}

// Error formats as "<op>: <cause> (db=X table=Y)".
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}

	var parts []string

	if e.Database != "" {
		parts = append(parts, "db="+e.Database)
	}

	if e.Table != "" {
		parts = append(parts, "table="+e.Table)
	}

	if len(parts) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// withContext attaches operation context. If err is already *Error, missing
// fields are filled in place.
func withContext(err error, op, db, table string) error {
	if err == nil {
		return nil
	}

	existing := &Error{}
	if errors.As(err, &existing) {
		if existing.Op == "" {
			existing.Op = op
		}

		if existing.Database == "" {
			existing.Database = db
		}

		if existing.Table == "" {
			existing.Table = table
		}

		return existing
	}

	return &Error{Op: op, Database: db, Table: table, Err: err}
}
