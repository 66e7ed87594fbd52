// Package rowjson turns stored rows into JSON objects.
//
// A row is a comma separated line whose fields line up with a table's
// column names. Every value is emitted as a JSON string; nothing is coerced.
package rowjson

import (
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/calvinalkan/flatdb/internal/textutil"
)

// EmptyArray is the JSON text for a result with no rows.
const EmptyArray = "[]"

var (
	// ErrEmptyInput is returned when there are no field names or no rows.
	ErrEmptyInput = errors.New("no fields or rows to map")

	// ErrFieldCountMismatch is returned when a row has a different number of
	// values than there are field names.
	ErrFieldCountMismatch = errors.New("row field count does not match columns")
)

// Object is one decoded row. Keys keep column order when marshalled.
type Object = *orderedmap.OrderedMap[string, string]

// Map zips field names with each row.
//
// Field names and values are trimmed. A row whose value count differs from
// len(fields) fails the whole call; no partial result is returned.
func Map(fields []string, rows []string) ([]Object, error) {
	if len(fields) == 0 || len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = textutil.Trim(f)
	}

	out := make([]Object, 0, len(rows))

	for i, row := range rows {
		values := textutil.Split(row, ",")
		if len(values) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrFieldCountMismatch, i+1, len(values), len(names))
		}

		obj := orderedmap.New[string, string]()
		for j, name := range names {
			obj.Set(name, values[j])
		}

		out = append(out, obj)
	}

	return out, nil
}

// Marshal encodes objects as a JSON array. No objects encodes as [EmptyArray].
func Marshal(objects []Object) ([]byte, error) {
	if len(objects) == 0 {
		return []byte(EmptyArray), nil
	}

	data, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("encoding rows: %w", err)
	}

	return data, nil
}

// Plain converts objects to plain maps, losing key order. Used by encoders
// that do not understand ordered maps.
func Plain(objects []Object) []map[string]string {
	out := make([]map[string]string, len(objects))

	for i, obj := range objects {
		m := make(map[string]string, obj.Len())
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			m[pair.Key] = pair.Value
		}

		out[i] = m
	}

	return out
}
