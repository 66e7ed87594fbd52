package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/flatdb/internal/format"
	"github.com/calvinalkan/flatdb/internal/naming"
	"github.com/calvinalkan/flatdb/internal/rowjson"
	"github.com/calvinalkan/flatdb/internal/store"
)

// Small name pools make collisions, and thus conflicts and matches, likely.
// "item" and "items" check that tables match by exact name.
var (
	dbPool     = []string{"shop", "crm", "logs"}
	tablePool  = []string{"items", "item", "users"}
	columnPool = []string{"id", "name", "qty"}
	fieldPool  = []string{"id", "name", "qty", "nope"}
	typePool   = []string{"int", "text"}
	valuePool  = []string{"1", "2", "3", "x", "y"}
)

// RunConfig controls [RunStore].
type RunConfig struct {
	// MaxOps caps the number of operations.
	MaxOps int

	// CompareEveryN compares listings and all table contents every N ops.
	CompareEveryN int
}

// DefaultRunConfig returns the configuration used by the fuzz tests.
func DefaultRunConfig() RunConfig {
	return RunConfig{MaxOps: 200, CompareEveryN: 10}
}

type runner struct {
	t     *testing.T
	st    *store.Store
	model *Model
	in    *ByteStream
	log   []string
}

// RunStore applies operations derived from data to st and to a fresh
// [Model], failing t on the first divergence. st must be empty.
func RunStore(t *testing.T, st *store.Store, data []byte, cfg RunConfig) {
	t.Helper()

	r := &runner{t: t, st: st, model: NewModel(), in: NewByteStream(data)}

	for i := 0; i < cfg.MaxOps && r.in.HasMore(); i++ {
		r.step()

		if cfg.CompareEveryN > 0 && (i+1)%cfg.CompareEveryN == 0 {
			r.compareAll()
		}
	}

	r.compareAll()
	r.checkCanonical()
}

func (r *runner) fail(msg string, args ...any) {
	r.t.Helper()
	r.t.Fatalf("%s\n\nops:\n  %s", fmt.Sprintf(msg, args...), strings.Join(r.log, "\n  "))
}

func (r *runner) record(msg string, args ...any) {
	r.log = append(r.log, fmt.Sprintf(msg, args...))
}

func (r *runner) step() {
	r.t.Helper()

	ctx := r.t.Context()
	db := Pick(r.in, dbPool)
	table := Pick(r.in, tablePool)

	switch r.in.NextInt(10) {
	case 0:
		r.record("create-db %s", db)
		_, err := r.st.CreateDatabase(ctx, db)
		r.compareStatus("create-db", store.StatusOf(err), r.model.CreateDatabase(db), err)

	case 1:
		if r.in.NextInt(4) != 0 {
			return
		}

		r.record("delete-db %s", db)
		err := r.st.DeleteDatabase(ctx, db)
		r.compareStatus("delete-db", store.StatusOf(err), r.model.DeleteDatabase(db), err)

	case 2:
		n := 1 + r.in.NextInt(len(columnPool))
		cols := columnPool[:n]

		colTypes := make([]string, n)
		for i := range colTypes {
			colTypes[i] = Pick(r.in, typePool)
		}

		r.record("create-table %s %s %v %v", db, table, cols, colTypes)
		err := r.st.CreateTable(ctx, db, table, cols, colTypes)
		r.compareStatus("create-table", store.StatusOf(err), r.model.CreateTable(db, table, cols), err)

	case 3:
		if r.in.NextInt(3) != 0 {
			return
		}

		r.record("delete-table %s %s", db, table)
		err := r.st.DeleteTable(ctx, db, table)
		r.compareStatus("delete-table", store.StatusOf(err), r.model.DeleteTable(db, table), err)

	case 4, 5, 6:
		width := len(r.model.Columns(db, table))
		if width == 0 {
			width = 1 + r.in.NextInt(len(columnPool))
		}

		if r.in.NextInt(16) == 0 {
			width++
		}

		row := make([]string, width)
		for i := range row {
			row[i] = Pick(r.in, valuePool)
		}

		line := strings.Join(row, ",")

		r.record("insert %s %s %s", db, table, line)
		err := r.st.Insert(ctx, db, table, line)
		r.compareStatus("insert", store.StatusOf(err), r.model.Insert(db, table, line), err)

	case 7:
		field, value := Pick(r.in, fieldPool), Pick(r.in, valuePool)

		r.record("fetch %s %s where %s=%s", db, table, field, value)
		res, err := r.st.FetchFiltered(ctx, db, table, field, value)
		want, status := r.model.FetchFiltered(db, table, field, value)
		r.compareRows("fetch filtered", res, err, want, status)

	case 8:
		checkField, checkValue := Pick(r.in, fieldPool), Pick(r.in, valuePool)
		field, value := Pick(r.in, fieldPool), Pick(r.in, valuePool)

		r.record("update %s %s where %s=%s set %s=%s", db, table, checkField, checkValue, field, value)
		n, err := r.st.Update(ctx, db, table, checkField, checkValue, field, value)
		wantN, status := r.model.Update(db, table, checkField, checkValue, field, value)
		r.compareStatus("update", store.StatusOf(err), status, err)

		if n != wantN {
			r.fail("update changed %d rows, model %d", n, wantN)
		}

	case 9:
		field, value := Pick(r.in, fieldPool), Pick(r.in, valuePool)

		r.record("delete-row %s %s where %s=%s", db, table, field, value)
		n, err := r.st.DeleteRows(ctx, db, table, field, value)
		wantN, status := r.model.DeleteRows(db, table, field, value)
		r.compareStatus("delete-row", store.StatusOf(err), status, err)

		if n != wantN {
			r.fail("delete-row removed %d rows, model %d", n, wantN)
		}
	}
}

func (r *runner) compareStatus(op string, got, want store.Status, err error) {
	r.t.Helper()

	if got != want {
		r.fail("%s: status %s, model %s (err: %v)", op, got, want, err)
	}
}

func (r *runner) compareRows(op string, res store.Result, err error, want []map[string]string, status store.Status) {
	r.t.Helper()

	r.compareStatus(op, res.Status, status, err)

	if diff := cmp.Diff(want, rowjson.Plain(res.Rows), cmpopts.EquateEmpty()); diff != "" {
		r.fail("%s: rows mismatch (-model +store):\n%s", op, diff)
	}
}

// compareAll checks database and table listings and every table's rows.
func (r *runner) compareAll() {
	r.t.Helper()

	ctx := r.t.Context()

	dbs, err := r.st.ListDatabases(ctx)
	if err != nil {
		r.fail("list databases: %v", err)
	}

	if diff := cmp.Diff(r.model.ListDatabases(), dbs, cmpopts.EquateEmpty()); diff != "" {
		r.fail("databases mismatch (-model +store):\n%s", diff)
	}

	for _, db := range dbs {
		tables, err := r.st.ListTables(ctx, db)
		if err != nil {
			r.fail("list tables %s: %v", db, err)
		}

		want, _ := r.model.ListTables(db)
		if diff := cmp.Diff(want, tables, cmpopts.EquateEmpty()); diff != "" {
			r.fail("tables of %s mismatch (-model +store):\n%s", db, diff)
		}

		for _, table := range tables {
			res, err := r.st.Fetch(ctx, db, table)
			rows, status := r.model.Fetch(db, table)
			r.compareRows("fetch "+db+"."+table, res, err, rows, status)
		}
	}
}

// checkCanonical verifies that every database file is in canonical form:
// parsing and serializing it again yields the same bytes.
func (r *runner) checkCanonical() {
	r.t.Helper()

	for _, db := range r.model.ListDatabases() {
		path, err := naming.DatabasePath(r.st.Dir(), db)
		if err != nil {
			r.fail("path of %s: %v", db, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			r.fail("read %s: %v", db, err)
		}

		doc, err := format.Parse(data)
		if err != nil {
			r.fail("parse %s: %v\n%s", db, err, data)
		}

		if diff := cmp.Diff(string(data), string(doc.Bytes())); diff != "" {
			r.fail("%s is not canonical (-file +reserialized):\n%s", db, diff)
		}
	}
}
