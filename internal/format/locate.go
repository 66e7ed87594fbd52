package format

import (
	"slices"
	"strings"

	"github.com/calvinalkan/flatdb/internal/textutil"
)

// Located is what [Locate] found for one table.
type Located struct {
	// Fields are the column names from the table's "# Columns:" line.
	Fields []string
	// Rows are the table's data rows, oldest first.
	Rows []string

	SchemaFound bool
	ValuesFound bool
}

// Found reports whether both the schema block and the values block exist.
func (l Located) Found() bool {
	return l.SchemaFound && l.ValuesFound
}

// Locate pulls one table's field names and rows out of data in a single
// forward scan, without building a [Document].
//
// Locate is lenient where [Parse] is strict: unrelated blocks are skipped
// unread. It fails only when the markers are missing or out of order.
func Locate(data []byte, table string) (Located, error) {
	var (
		out           Located
		inSchema      bool
		inValues      bool
		columnsWanted bool
	)

	err := scan(data, func(sec section, line string) error {
		switch sec {
		case sectionSchema:
			if name, ok := tableHeader(line); ok {
				inSchema = name == table && !out.SchemaFound
				columnsWanted = inSchema
				out.SchemaFound = out.SchemaFound || inSchema

				return nil
			}

			if inSchema && columnsWanted && strings.Contains(line, ColumnsPrefix) {
				out.Fields = ColumnNames(line)
				columnsWanted = false
			}
		case sectionValues:
			if name, ok := tableHeader(line); ok {
				inValues = name == table
				out.ValuesFound = out.ValuesFound || inValues

				return nil
			}

			if inValues && !textutil.IsBlank(line) {
				out.Rows = append(out.Rows, textutil.Trim(line))
			}
		case sectionHeader, sectionBetween, sectionTrailer:
		}

		return nil
	})
	if err != nil {
		return Located{}, err
	}

	slices.Reverse(out.Rows)

	return out, nil
}
