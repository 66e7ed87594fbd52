// Package store is the file-backed storage engine.
//
// Each database is one text file in the store directory (see package
// format for the layout). Every operation re-reads the file: there is no
// in-memory cache. Mutations take the file lock, parse the file into a
// [format.Document], change it, and write the whole file back atomically.
// Reads scan the raw bytes for one table with [format.Locate].
//
// Database and table names are sanitized here; callers pass them as the
// user typed them.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/calvinalkan/flatdb/internal/format"
	"github.com/calvinalkan/flatdb/internal/naming"
	"github.com/calvinalkan/flatdb/pkg/fs"
)

const (
	// DefaultFilePerm is the mode of new database files.
	DefaultFilePerm os.FileMode = 0o644

	dirPerm os.FileMode = 0o750
)

// Options configures [Open].
type Options struct {
	// Dir is the directory holding the database files. Required.
	Dir string

	// FS is the filesystem. Nil means [fs.NewReal].
	FS fs.FS

	// Logger receives debug records for every mutation. Nil discards.
	Logger *slog.Logger

	// FilePerm is the mode of database files. Zero means [DefaultFilePerm].
	FilePerm os.FileMode
}

// Store runs operations against the database files in one directory.
//
// Operations are serialized: one runs to completion before the next starts.
// Across processes, mutations of the same file are serialized by a file lock.
type Store struct {
	dir  string
	fs   fs.FS
	log  *slog.Logger
	perm os.FileMode

	mu sync.Mutex
}

// Open prepares a store over opts.Dir, creating the directory if needed.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if ctx == nil {
		return nil, errors.New("open store: context is nil")
	}

	if opts.Dir == "" {
		return nil, errors.New("open store: directory is empty")
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	perm := opts.FilePerm
	if perm == 0 {
		perm = DefaultFilePerm
	}

	dir := filepath.Clean(opts.Dir)

	if err := fsys.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("open store: create directory: %w", err)
	}

	return &Store{dir: dir, fs: fsys, log: logger, perm: perm}, nil
}

// Dir returns the directory holding the database files.
func (s *Store) Dir() string {
	return s.dir
}

// target is a resolved database (and optionally table) name.
type target struct {
	db    string
	path  string
	table string
}

// resolve sanitizes db (and table, when non-empty) and computes the path.
func (s *Store) resolve(db, table string) (target, error) {
	var t target

	t.db = naming.SanitizeDatabase(db)

	path, err := naming.DatabasePath(s.dir, db)
	if err != nil {
		return t, err
	}

	t.path = path

	if table == "" {
		return t, nil
	}

	t.table, err = naming.TableName(table)

	return t, err
}

// read loads a database file, mapping a missing file to [ErrDatabaseNotFound].
func (s *Store) read(path string) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDatabaseNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading database: %w", err)
	}

	return data, nil
}

// withFileLock runs handler while holding the file lock for path.
func (s *Store) withFileLock(path string, handler func() error) error {
	lock, err := s.fs.Lock(path)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	handleErr := handler()

	if closeErr := lock.Close(); closeErr != nil {
		s.log.Warn("releasing lock failed", "path", path, "error", closeErr)
	}

	return handleErr
}

// modify is the read-transform-write cycle shared by all table mutations.
//
// transform receives the parsed document and mutates it in place. If
// transform returns an error nothing is written. The document is written
// back in canonical form, so hand edits such as runs of blank lines do not
// survive a mutation.
func (s *Store) modify(ctx context.Context, t target, transform func(doc *format.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(t.path, func() error {
		data, err := s.read(t.path)
		if err != nil {
			return err
		}

		doc, err := format.Parse(data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		if err := transform(doc); err != nil {
			return err
		}

		if err := s.fs.WriteFileAtomic(t.path, doc.Bytes(), s.perm); err != nil {
			return fmt.Errorf("writing database: %w", err)
		}

		return nil
	})
}

// view reads a database file without taking the file lock. Writes replace
// the file by rename, so a read sees one complete version.
func (s *Store) view(ctx context.Context, t target) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(t.path)
}
