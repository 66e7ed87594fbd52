package format

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/calvinalkan/flatdb/internal/textutil"
)

// Table is one table: its declared columns and its rows.
//
// Rows are kept in insertion order (oldest first). On disk they are written
// newest first.
type Table struct {
	Name    string
	Columns []Column
	Rows    []string
}

// FieldNames returns the column names in declaration order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}

	return names
}

// FieldIndex returns the position of field in the column list, or -1.
func (t *Table) FieldIndex(field string) int {
	return slices.Index(t.FieldNames(), field)
}

// Document is a parsed database file.
type Document struct {
	// Header holds the non-blank lines before the Name line.
	Header []string
	Name   string

	tables *orderedmap.OrderedMap[string, *Table]
}

// NewDocument returns an empty document for a new database file.
func NewDocument(name string) *Document {
	return &Document{
		Header: slices.Clone(Banner),
		Name:   name,
		tables: orderedmap.New[string, *Table](),
	}
}

// Table returns the named table.
func (d *Document) Table(name string) (*Table, bool) {
	return d.tables.Get(name)
}

// Tables returns all tables in file order.
func (d *Document) Tables() []*Table {
	out := make([]*Table, 0, d.tables.Len())
	for pair := d.tables.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

// TableNames returns all table names in file order.
func (d *Document) TableNames() []string {
	out := make([]string, 0, d.tables.Len())
	for pair := d.tables.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}

	return out
}

// AddTable appends an empty table. It reports false if the name is taken.
func (d *Document) AddTable(name string, cols []Column) (*Table, bool) {
	if _, exists := d.tables.Get(name); exists {
		return nil, false
	}

	t := &Table{Name: name, Columns: slices.Clone(cols)}
	d.tables.Set(name, t)

	return t, true
}

// RemoveTable drops the named table and its rows.
func (d *Document) RemoveTable(name string) bool {
	_, ok := d.tables.Delete(name)

	return ok
}

// Bytes serializes the document in canonical form.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer

	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	for _, h := range d.Header {
		line(h)
	}

	line(NamePrefix + " " + d.Name)
	line(MarkerSchemaBegin)

	for _, t := range d.Tables() {
		line(TablePrefix + " " + t.Name)
		line(ColumnsPrefix + " " + FormatColumns(t.Columns))
		line("")

		for _, c := range t.Columns {
			line(c.String())
		}

		line("")
	}

	line(MarkerSchemaEnd)
	line(MarkerValuesBegin)

	for _, t := range d.Tables() {
		line(TablePrefix + " " + t.Name)

		for i := len(t.Rows) - 1; i >= 0; i-- {
			line(t.Rows[i])
		}
	}

	line(MarkerValuesEnd)

	return b.Bytes()
}

// Parse reads a database file into a Document.
//
// Parse is strict: a table declared twice, a values block without a schema
// block, a schema block without a "# Columns:" line, and rows outside any
// values block all fail with [ErrMalformed]. Marker problems fail with
// [ErrMissingMarkers] or [ErrMarkerOrder].
func Parse(data []byte) (*Document, error) {
	p := parser{doc: &Document{tables: orderedmap.New[string, *Table]()}}

	if err := scan(data, p.visit); err != nil {
		return nil, err
	}

	if err := p.closeSchema(); err != nil {
		return nil, err
	}

	for _, t := range p.doc.Tables() {
		slices.Reverse(t.Rows)
	}

	return p.doc, nil
}

type parser struct {
	doc *Document

	// schema block state
	schema      *Table
	haveColumns bool

	// values block state
	values     *Table
	seenValues map[string]bool
}

func (p *parser) visit(sec section, line string) error {
	switch sec {
	case sectionHeader:
		return p.header(line)
	case sectionSchema:
		return p.schemaLine(line)
	case sectionBetween:
		if err := p.closeSchema(); err != nil {
			return err
		}

		if !textutil.IsBlank(line) {
			return fmt.Errorf("%w: unexpected line between sections: %q", ErrMalformed, line)
		}
	case sectionValues:
		return p.valuesLine(line)
	case sectionTrailer:
	}

	return nil
}

func (p *parser) header(line string) error {
	if textutil.IsBlank(line) {
		return nil
	}

	trimmed := textutil.Trim(line)
	if rest, ok := strings.CutPrefix(trimmed, NamePrefix); ok {
		p.doc.Name = textutil.Trim(rest)

		return nil
	}

	p.doc.Header = append(p.doc.Header, trimmed)

	return nil
}

func (p *parser) schemaLine(line string) error {
	if textutil.IsBlank(line) {
		return nil
	}

	if name, ok := tableHeader(line); ok {
		if err := p.closeSchema(); err != nil {
			return err
		}

		if name == "" {
			return fmt.Errorf("%w: table header without a name", ErrMalformed)
		}

		t, added := p.doc.AddTable(name, nil)
		if !added {
			return fmt.Errorf("%w: table %q declared twice", ErrMalformed, name)
		}

		p.schema = t

		return nil
	}

	if p.schema == nil {
		return fmt.Errorf("%w: schema line outside a table block: %q", ErrMalformed, line)
	}

	if !p.haveColumns {
		cols, err := ParseColumns(line)
		if err != nil {
			return fmt.Errorf("table %q: %w", p.schema.Name, err)
		}

		p.schema.Columns = cols
		p.haveColumns = true

		return nil
	}

	// Per-column detail lines repeat the "# Columns:" summary.
	if textutil.CountWords(line) != 2 {
		return fmt.Errorf("%w: table %q: bad column line %q", ErrMalformed, p.schema.Name, line)
	}

	return nil
}

func (p *parser) closeSchema() error {
	if p.schema != nil && !p.haveColumns {
		return fmt.Errorf("%w: table %q has no columns line", ErrMalformed, p.schema.Name)
	}

	p.schema = nil
	p.haveColumns = false

	return nil
}

func (p *parser) valuesLine(line string) error {
	if textutil.IsBlank(line) {
		return nil
	}

	if name, ok := tableHeader(line); ok {
		t, exists := p.doc.Table(name)
		if !exists {
			return fmt.Errorf("%w: values for undeclared table %q", ErrMalformed, name)
		}

		if p.seenValues == nil {
			p.seenValues = make(map[string]bool)
		}

		if p.seenValues[name] {
			return fmt.Errorf("%w: values for table %q appear twice", ErrMalformed, name)
		}

		p.seenValues[name] = true
		p.values = t

		return nil
	}

	if p.values == nil {
		return fmt.Errorf("%w: row outside a table block: %q", ErrMalformed, line)
	}

	p.values.Rows = append(p.values.Rows, textutil.Trim(line))

	return nil
}
