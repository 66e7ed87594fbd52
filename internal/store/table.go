package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/calvinalkan/flatdb/internal/format"
	"github.com/calvinalkan/flatdb/internal/naming"
	"github.com/calvinalkan/flatdb/internal/textutil"
)

// CreateTable adds a table to a database. columns and types pair up by
// position. Column names are sanitized like table names; a type is any
// single word.
func (s *Store) CreateTable(ctx context.Context, db, table string, columns, types []string) error {
	const op = "create table"

	t, err := s.resolve(db, table)
	if err != nil {
		return withContext(err, op, t.db, t.table)
	}

	cols, err := buildColumns(columns, types)
	if err != nil {
		return withContext(err, op, t.db, t.table)
	}

	err = s.modify(ctx, t, func(doc *format.Document) error {
		if _, added := doc.AddTable(t.table, cols); !added {
			return ErrTableExists
		}

		return nil
	})
	if err != nil {
		return withContext(err, op, t.db, t.table)
	}

	s.log.Debug("table created", "db", t.db, "table", t.table, "columns", format.FormatColumns(cols))

	return nil
}

// DeleteTable removes a table's schema block and all its rows.
func (s *Store) DeleteTable(ctx context.Context, db, table string) error {
	const op = "delete table"

	t, err := s.resolve(db, table)
	if err != nil {
		return withContext(err, op, t.db, t.table)
	}

	err = s.modify(ctx, t, func(doc *format.Document) error {
		if !doc.RemoveTable(t.table) {
			return ErrTableNotFound
		}

		return nil
	})
	if err != nil {
		return withContext(err, op, t.db, t.table)
	}

	s.log.Debug("table deleted", "db", t.db, "table", t.table)

	return nil
}

func buildColumns(columns, types []string) ([]format.Column, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidColumns)
	}

	if len(columns) != len(types) {
		return nil, fmt.Errorf("%w: %d columns but %d types", ErrInvalidColumns, len(columns), len(types))
	}

	cols := make([]format.Column, 0, len(columns))
	seen := make(map[string]bool, len(columns))

	for i, raw := range columns {
		name := naming.Sanitize(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: column %q", ErrInvalidColumns, raw)
		}

		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidColumns, name)
		}

		seen[name] = true

		typ := textutil.Trim(types[i])
		if textutil.CountWords(typ) != 1 || strings.Contains(typ, ",") {
			return nil, fmt.Errorf("%w: column %q has type %q", ErrInvalidColumns, name, types[i])
		}

		if err := checkCell(typ); err != nil {
			return nil, fmt.Errorf("%w: column %q: %w", ErrInvalidColumns, name, err)
		}

		cols = append(cols, format.Column{Name: name, Type: typ})
	}

	return cols, nil
}
