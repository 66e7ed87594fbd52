package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/flatdb/internal/format"
	"github.com/calvinalkan/flatdb/internal/rowjson"
	"github.com/calvinalkan/flatdb/internal/textutil"
)

// Insert appends a comma separated row to a table.
//
// The value count is not checked against the table's columns here; a row
// with the wrong count makes later reads of the table fail with
// [ErrMalformed].
func (s *Store) Insert(ctx context.Context, db, table, row string) error {
	const op = "insert"

	t, err := s.resolve(db, table)
	if err != nil {
		return withContext(err, op, t.db, t.table)
	}

	row = textutil.Trim(row)

	if row == "" || strings.ContainsAny(row, "\r\n") {
		return withContext(fmt.Errorf("%w: row %q", ErrInvalidValue, row), op, t.db, t.table)
	}

	if err := checkCell(row); err != nil {
		return withContext(err, op, t.db, t.table)
	}

	err = s.modify(ctx, t, func(doc *format.Document) error {
		tbl, ok := doc.Table(t.table)
		if !ok {
			return ErrTableNotFound
		}

		tbl.Rows = append(tbl.Rows, row)

		return nil
	})
	if err != nil {
		return withContext(err, op, t.db, t.table)
	}

	s.log.Debug("row inserted", "db", t.db, "table", t.table)

	return nil
}

// Fetch returns all rows of a table in insertion order.
//
// The returned error is nil for [StatusOK] and [StatusEmpty]; every other
// status comes with the error that caused it. A missing database or table
// is [StatusNotFound] with a non-nil error, yet [Result.JSON] still encodes
// it as the empty array: callers that only speak the empty-array contract,
// like the HTTP server, answer "[]" and ignore the error, while the CLI
// prints "[]" and exits 1 with a warning.
func (s *Store) Fetch(ctx context.Context, db, table string) (Result, error) {
	fields, rows, err := s.fetch(ctx, "fetch", db, table)

	return resultOf(fields, rows, err), err
}

// FetchFiltered returns the rows whose checkField value equals checkValue
// after trimming, in insertion order. An unknown checkField matches nothing.
func (s *Store) FetchFiltered(ctx context.Context, db, table, checkField, checkValue string) (Result, error) {
	fields, rows, err := s.fetch(ctx, "fetch filtered", db, table)
	if err != nil {
		return resultOf(fields, nil, err), err
	}

	field := textutil.Trim(checkField)
	value := textutil.Trim(checkValue)

	matched := slices.DeleteFunc(rows, func(obj rowjson.Object) bool {
		got, ok := obj.Get(field)

		return !ok || got != value
	})

	return resultOf(fields, matched, nil), nil
}

func (s *Store) fetch(ctx context.Context, op, db, table string) ([]string, []rowjson.Object, error) {
	t, err := s.resolve(db, table)
	if err != nil {
		return nil, nil, withContext(err, op, t.db, t.table)
	}

	data, err := s.view(ctx, t)
	if err != nil {
		return nil, nil, withContext(err, op, t.db, t.table)
	}

	loc, err := format.Locate(data, t.table)
	if err != nil {
		return nil, nil, withContext(fmt.Errorf("%w: %w", ErrMalformed, err), op, t.db, t.table)
	}

	if !loc.Found() {
		return nil, nil, withContext(ErrTableNotFound, op, t.db, t.table)
	}

	if len(loc.Rows) == 0 {
		return loc.Fields, nil, nil
	}

	objs, err := rowjson.Map(loc.Fields, loc.Rows)
	if err != nil {
		return loc.Fields, nil, withContext(fmt.Errorf("%w: %w", ErrMalformed, err), op, t.db, t.table)
	}

	return loc.Fields, objs, nil
}

// Update sets updateField to updateValue in every row whose checkField
// equals checkValue, and returns how many rows changed.
//
// Every row of the table must have the declared number of values, as for
// [Store.FetchFiltered]. No matching row is [ErrNoMatch] and leaves the file
// untouched.
func (s *Store) Update(ctx context.Context, db, table, checkField, checkValue, updateField, updateValue string) (int, error) {
	const op = "update"

	t, err := s.resolve(db, table)
	if err != nil {
		return 0, withContext(err, op, t.db, t.table)
	}

	newValue := textutil.Trim(updateValue)
	if strings.ContainsAny(newValue, ",\r\n") {
		return 0, withContext(fmt.Errorf("%w: update value %q", ErrInvalidValue, updateValue), op, t.db, t.table)
	}

	if err := checkCell(newValue); err != nil {
		return 0, withContext(err, op, t.db, t.table)
	}

	var changed int

	err = s.modify(ctx, t, func(doc *format.Document) error {
		tbl, ok := doc.Table(t.table)
		if !ok {
			return ErrTableNotFound
		}

		checkIdx := tbl.FieldIndex(textutil.Trim(checkField))
		if checkIdx < 0 {
			return fmt.Errorf("%w: %q", ErrNoMatch, checkField)
		}

		updateIdx := tbl.FieldIndex(textutil.Trim(updateField))
		if updateIdx < 0 {
			return fmt.Errorf("%w: %q", ErrFieldNotFound, updateField)
		}

		want := textutil.Trim(checkValue)
		width := len(tbl.Columns)

		for i, row := range tbl.Rows {
			values := textutil.Split(row, ",")
			if len(values) != width {
				return fmt.Errorf("%w: %w: row %d has %d values, want %d",
					ErrMalformed, rowjson.ErrFieldCountMismatch, i+1, len(values), width)
			}

			if values[checkIdx] != want {
				continue
			}

			values[updateIdx] = newValue
			tbl.Rows[i] = strings.Join(values, ",")
			changed++
		}

		if changed == 0 {
			return ErrNoMatch
		}

		return nil
	})
	if err != nil {
		return 0, withContext(err, op, t.db, t.table)
	}

	s.log.Debug("rows updated", "db", t.db, "table", t.table, "count", changed)

	return changed, nil
}

// DeleteRows removes every row whose checkField equals checkValue and
// returns how many were removed. No matching row is [ErrNoMatch] and leaves
// the file untouched.
//
// Rows too short to have checkField are kept.
func (s *Store) DeleteRows(ctx context.Context, db, table, checkField, checkValue string) (int, error) {
	const op = "delete rows"

	t, err := s.resolve(db, table)
	if err != nil {
		return 0, withContext(err, op, t.db, t.table)
	}

	var removed int

	err = s.modify(ctx, t, func(doc *format.Document) error {
		tbl, ok := doc.Table(t.table)
		if !ok {
			return ErrTableNotFound
		}

		idx := tbl.FieldIndex(textutil.Trim(checkField))
		if idx < 0 {
			return fmt.Errorf("%w: %q", ErrNoMatch, checkField)
		}

		want := textutil.Trim(checkValue)
		before := len(tbl.Rows)

		tbl.Rows = slices.DeleteFunc(tbl.Rows, func(row string) bool {
			values := textutil.Split(row, ",")

			return idx < len(values) && values[idx] == want
		})

		removed = before - len(tbl.Rows)
		if removed == 0 {
			return ErrNoMatch
		}

		return nil
	})
	if err != nil {
		return 0, withContext(err, op, t.db, t.table)
	}

	s.log.Debug("rows deleted", "db", t.db, "table", t.table, "count", removed)

	return removed, nil
}

// structural is every string the file format reads as structure when it
// appears in a line.
var structural = []string{
	format.MarkerSchemaBegin,
	format.MarkerSchemaEnd,
	format.MarkerValuesBegin,
	format.MarkerValuesEnd,
}

// checkCell rejects text that would be read back as a section marker or a
// table header instead of data.
func checkCell(s string) error {
	for _, m := range structural {
		if strings.Contains(s, m) {
			return fmt.Errorf("%w: %q contains the marker %s", ErrInvalidValue, s, m)
		}
	}

	if strings.HasPrefix(textutil.Trim(s), format.TablePrefix) {
		return fmt.Errorf("%w: %q starts with %q", ErrInvalidValue, s, format.TablePrefix)
	}

	return nil
}
