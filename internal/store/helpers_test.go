package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/flatdb/internal/rowjson"
	"github.com/calvinalkan/flatdb/internal/store"
	"github.com/calvinalkan/flatdb/pkg/fs"
)

func openStore(t *testing.T, fsys fs.FS) *store.Store {
	t.Helper()

	s, err := store.Open(t.Context(), store.Options{Dir: t.TempDir(), FS: fsys})
	require.NoError(t, err, "open store")

	return s
}

// shopStore returns a store with database "shop" and table "items(id int, name text)".
func shopStore(t *testing.T, fsys fs.FS) *store.Store {
	t.Helper()

	s := openStore(t, fsys)

	_, err := s.CreateDatabase(t.Context(), "shop")
	require.NoError(t, err, "create database")

	err = s.CreateTable(t.Context(), "shop", "items", []string{"id", "name"}, []string{"int", "text"})
	require.NoError(t, err, "create table")

	return s
}

func insertRows(t *testing.T, s *store.Store, db, table string, rows ...string) {
	t.Helper()

	for _, row := range rows {
		require.NoError(t, s.Insert(t.Context(), db, table, row), "insert %q", row)
	}
}

func readDB(t *testing.T, s *store.Store, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(s.Dir(), name+".db"))
	require.NoError(t, err, "read database file")

	return string(data)
}

func writeDB(t *testing.T, s *store.Store, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), name+".db"), []byte(content), 0o644))
}

func plain(r store.Result) []map[string]string {
	return rowjson.Plain(r.Rows)
}
