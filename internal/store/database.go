package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/calvinalkan/flatdb/internal/format"
	"github.com/calvinalkan/flatdb/internal/naming"
)

// CreateDatabase creates an empty database file and returns the sanitized
// name. If the file already exists it is left untouched and
// [ErrDatabaseExists] is returned.
func (s *Store) CreateDatabase(ctx context.Context, name string) (string, error) {
	const op = "create database"

	t, err := s.resolve(name, "")
	if err != nil {
		return "", withContext(err, op, "", "")
	}

	if err := ctx.Err(); err != nil {
		return "", withContext(err, op, t.db, "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.withFileLock(t.path, func() error {
		exists, err := s.fs.Exists(t.path)
		if err != nil {
			return fmt.Errorf("checking database: %w", err)
		}

		if exists {
			return ErrDatabaseExists
		}

		if err := s.fs.WriteFileAtomic(t.path, format.NewDocument(t.db).Bytes(), s.perm); err != nil {
			return fmt.Errorf("writing database: %w", err)
		}

		return nil
	})
	if err != nil {
		return t.db, withContext(err, op, t.db, "")
	}

	s.log.Debug("database created", "db", t.db, "path", t.path)

	return t.db, nil
}

// DeleteDatabase removes a database file.
func (s *Store) DeleteDatabase(ctx context.Context, name string) error {
	const op = "delete database"

	t, err := s.resolve(name, "")
	if err != nil {
		return withContext(err, op, "", "")
	}

	if err := ctx.Err(); err != nil {
		return withContext(err, op, t.db, "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.withFileLock(t.path, func() error {
		err := s.fs.Remove(t.path)
		if errors.Is(err, os.ErrNotExist) {
			return ErrDatabaseNotFound
		}

		if err != nil {
			return fmt.Errorf("removing database: %w", err)
		}

		return nil
	})
	if err != nil {
		return withContext(err, op, t.db, "")
	}

	s.log.Debug("database deleted", "db", t.db)

	return nil
}

// ListDatabases returns the names of all databases, sorted.
func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	const op = "list databases"

	if err := ctx.Err(); err != nil {
		return nil, withContext(err, op, "", "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.fs.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}

	if err != nil {
		return nil, withContext(fmt.Errorf("reading directory: %w", err), op, "", "")
	}

	names := []string{}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if name, ok := naming.DatabaseNameFromFile(e.Name()); ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names, nil
}

// ListTables returns the table names of a database in file order.
func (s *Store) ListTables(ctx context.Context, db string) ([]string, error) {
	doc, err := s.load(ctx, "list tables", db)
	if err != nil {
		return nil, err
	}

	return doc.TableNames(), nil
}

// Dump returns the parsed content of a database.
func (s *Store) Dump(ctx context.Context, db string) (*format.Document, error) {
	return s.load(ctx, "dump", db)
}

func (s *Store) load(ctx context.Context, op, db string) (*format.Document, error) {
	t, err := s.resolve(db, "")
	if err != nil {
		return nil, withContext(err, op, "", "")
	}

	data, err := s.view(ctx, t)
	if err != nil {
		return nil, withContext(err, op, t.db, "")
	}

	doc, err := format.Parse(data)
	if err != nil {
		return nil, withContext(fmt.Errorf("%w: %w", ErrMalformed, err), op, t.db, "")
	}

	return doc, nil
}
