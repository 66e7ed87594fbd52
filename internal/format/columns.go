package format

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/flatdb/internal/textutil"
)

// Column is a declared column: a name and a free-form type word.
// Types are recorded, never enforced.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// String formats the column as "<name> <type>".
func (c Column) String() string {
	return c.Name + " " + c.Type
}

// ColumnNames extracts field names from a "# Columns:" line.
//
// The prefix is stripped, the rest is split on ",", and the first word of
// each entry is the field name; type words are discarded. Entries without a
// word are skipped.
func ColumnNames(line string) []string {
	rest := textutil.Replace(textutil.Trim(line), ColumnsPrefix, "")

	var names []string

	for _, entry := range textutil.Split(rest, ",") {
		if name := textutil.FirstWord(entry); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// ParseColumns parses a "# Columns:" line into name/type pairs.
// Every entry must have exactly a name and a type.
func ParseColumns(line string) ([]Column, error) {
	rest, ok := strings.CutPrefix(textutil.Trim(line), ColumnsPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: not a columns line: %q", ErrMalformed, line)
	}

	if textutil.Trim(rest) == "" {
		return nil, fmt.Errorf("%w: empty columns line", ErrMalformed)
	}

	entries := textutil.Split(rest, ",")
	cols := make([]Column, 0, len(entries))

	for _, entry := range entries {
		if textutil.CountWords(entry) != 2 {
			return nil, fmt.Errorf("%w: column entry %q is not \"<name> <type>\"", ErrMalformed, entry)
		}

		words := strings.Fields(entry)
		cols = append(cols, Column{Name: words[0], Type: words[1]})
	}

	return cols, nil
}

// FormatColumns renders columns as the body of a "# Columns:" line.
func FormatColumns(cols []Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.String()
	}

	return strings.Join(parts, ", ")
}
