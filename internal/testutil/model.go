package testutil

import (
	"slices"
	"strings"

	"github.com/calvinalkan/flatdb/internal/store"
)

// Model is the expected state of a store directory. Names passed to it
// must already be sanitized.
type Model struct {
	dbs map[string]*modelDB
}

type modelDB struct {
	tables []*modelTable
}

type modelTable struct {
	name    string
	columns []string
	rows    []string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{dbs: map[string]*modelDB{}}
}

func (t *modelTable) index(field string) int {
	return slices.Index(t.columns, field)
}

func (t *modelTable) malformed() bool {
	for _, row := range t.rows {
		if len(strings.Split(row, ",")) != len(t.columns) {
			return true
		}
	}

	return false
}

func (t *modelTable) objects(keep func(values []string) bool) []map[string]string {
	var out []map[string]string

	for _, row := range t.rows {
		values := strings.Split(row, ",")
		if !keep(values) {
			continue
		}

		obj := make(map[string]string, len(values))
		for i, col := range t.columns {
			obj[col] = values[i]
		}

		out = append(out, obj)
	}

	return out
}

func (d *modelDB) table(name string) (*modelTable, bool) {
	for _, t := range d.tables {
		if t.name == name {
			return t, true
		}
	}

	return nil, false
}

func (m *Model) table(db, table string) (*modelTable, store.Status) {
	d, ok := m.dbs[db]
	if !ok {
		return nil, store.StatusNotFound
	}

	t, ok := d.table(table)
	if !ok {
		return nil, store.StatusNotFound
	}

	return t, store.StatusOK
}

// CreateDatabase adds an empty database.
func (m *Model) CreateDatabase(db string) store.Status {
	if _, ok := m.dbs[db]; ok {
		return store.StatusConflict
	}

	m.dbs[db] = &modelDB{}

	return store.StatusOK
}

// DeleteDatabase drops a database.
func (m *Model) DeleteDatabase(db string) store.Status {
	if _, ok := m.dbs[db]; !ok {
		return store.StatusNotFound
	}

	delete(m.dbs, db)

	return store.StatusOK
}

// ListDatabases returns the sorted database names.
func (m *Model) ListDatabases() []string {
	names := make([]string, 0, len(m.dbs))
	for name := range m.dbs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ListTables returns the table names in creation order.
func (m *Model) ListTables(db string) ([]string, store.Status) {
	d, ok := m.dbs[db]
	if !ok {
		return nil, store.StatusNotFound
	}

	names := make([]string, 0, len(d.tables))
	for _, t := range d.tables {
		names = append(names, t.name)
	}

	return names, store.StatusOK
}

// CreateTable adds a table with the given columns.
func (m *Model) CreateTable(db, table string, columns []string) store.Status {
	d, ok := m.dbs[db]
	if !ok {
		return store.StatusNotFound
	}

	if _, ok := d.table(table); ok {
		return store.StatusConflict
	}

	d.tables = append(d.tables, &modelTable{name: table, columns: slices.Clone(columns)})

	return store.StatusOK
}

// DeleteTable drops a table.
func (m *Model) DeleteTable(db, table string) store.Status {
	d, ok := m.dbs[db]
	if !ok {
		return store.StatusNotFound
	}

	before := len(d.tables)
	d.tables = slices.DeleteFunc(d.tables, func(t *modelTable) bool { return t.name == table })

	if len(d.tables) == before {
		return store.StatusNotFound
	}

	return store.StatusOK
}

// Insert appends a row. The value count is not checked.
func (m *Model) Insert(db, table, row string) store.Status {
	t, status := m.table(db, table)
	if status != store.StatusOK {
		return status
	}

	t.rows = append(t.rows, row)

	return store.StatusOK
}

// Fetch returns all rows in insertion order.
func (m *Model) Fetch(db, table string) ([]map[string]string, store.Status) {
	return m.FetchFiltered(db, table, "", "")
}

// FetchFiltered returns the rows where field equals value. An empty field
// matches every row.
func (m *Model) FetchFiltered(db, table, field, value string) ([]map[string]string, store.Status) {
	t, status := m.table(db, table)
	if status != store.StatusOK {
		return nil, status
	}

	if t.malformed() {
		return nil, store.StatusMalformed
	}

	idx := t.index(field)
	if field != "" && idx < 0 {
		return nil, store.StatusEmpty
	}

	rows := t.objects(func(values []string) bool {
		return field == "" || values[idx] == value
	})

	if len(rows) == 0 {
		return nil, store.StatusEmpty
	}

	return rows, store.StatusOK
}

// Update sets field on every matching row.
func (m *Model) Update(db, table, checkField, checkValue, field, value string) (int, store.Status) {
	t, status := m.table(db, table)
	if status != store.StatusOK {
		return 0, status
	}

	checkIdx, idx := t.index(checkField), t.index(field)
	if checkIdx < 0 || idx < 0 {
		return 0, store.StatusNotFound
	}

	if t.malformed() {
		return 0, store.StatusMalformed
	}

	changed := 0

	for i, row := range t.rows {
		values := strings.Split(row, ",")
		if values[checkIdx] != checkValue {
			continue
		}

		values[idx] = value
		t.rows[i] = strings.Join(values, ",")
		changed++
	}

	if changed == 0 {
		return 0, store.StatusNotFound
	}

	return changed, store.StatusOK
}

// DeleteRows removes every matching row. Rows too short to hold the field
// are kept.
func (m *Model) DeleteRows(db, table, checkField, checkValue string) (int, store.Status) {
	t, status := m.table(db, table)
	if status != store.StatusOK {
		return 0, status
	}

	idx := t.index(checkField)
	if idx < 0 {
		return 0, store.StatusNotFound
	}

	before := len(t.rows)
	t.rows = slices.DeleteFunc(t.rows, func(row string) bool {
		values := strings.Split(row, ",")

		return idx < len(values) && values[idx] == checkValue
	})

	removed := before - len(t.rows)
	if removed == 0 {
		return 0, store.StatusNotFound
	}

	return removed, store.StatusOK
}

// Columns returns the columns of a table, or nil.
func (m *Model) Columns(db, table string) []string {
	t, status := m.table(db, table)
	if status != store.StatusOK {
		return nil
	}

	return t.columns
}
