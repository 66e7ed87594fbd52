// Package format reads and writes the database file format.
//
// A database file is plain text:
//
//	# flatdb database file
//	Name: shop
//	[TABLE_BEGIN]
//	# Table: items
//	# Columns: id int, name text
//
//	id int
//	name text
//
//	[TABLE_END]
//	[TABLE_VALUE_BEGIN]
//	# Table: items
//	2,gadget
//	1,widget
//	[TABLE_VALUE_END]
//
// The schema section holds one block per table; the values section holds one
// block of comma separated rows per table, newest row first. Markers are
// recognised by substring containment, everything else line by line.
//
// Two entry points share one scanner: [Parse] builds a [Document] for
// read-modify-write operations, [Locate] pulls a single table's columns and
// rows out of the raw bytes for reads.
package format

import (
	"errors"
	"strings"

	"github.com/calvinalkan/flatdb/internal/textutil"
)

// Structural markers.
const (
	MarkerSchemaBegin = "[TABLE_BEGIN]"
	MarkerSchemaEnd   = "[TABLE_END]"
	MarkerValuesBegin = "[TABLE_VALUE_BEGIN]"
	MarkerValuesEnd   = "[TABLE_VALUE_END]"
)

// Line prefixes.
const (
	TablePrefix   = "# Table:"
	ColumnsPrefix = "# Columns:"
	NamePrefix    = "Name:"
)

// Banner is written at the top of every new database file.
var Banner = []string{
	"# flatdb database file",
	"# Markers and table blocks are parsed line by line; keep one entry per line.",
}

var (
	// ErrMissingMarkers is returned when a marker pair is absent.
	ErrMissingMarkers = errors.New("missing section markers")

	// ErrMarkerOrder is returned when markers are duplicated or out of order.
	ErrMarkerOrder = errors.New("section markers out of order")

	// ErrMalformed is returned when a schema or values block cannot be read.
	ErrMalformed = errors.New("malformed database file")
)

// section is the scanner position inside a file.
type section int

const (
	sectionHeader section = iota
	sectionSchema
	sectionBetween
	sectionValues
	sectionTrailer
)

// scan walks data line by line, tracking which section each line belongs
// to, and hands every non-marker line to visit.
//
// It enforces marker order: schema section first, values section second,
// each exactly once.
func scan(data []byte, visit func(sec section, line string) error) error {
	sec := sectionHeader

	for _, line := range textutil.Lines(string(data)) {
		marker, ok := markerOf(line)
		if !ok {
			if err := visit(sec, line); err != nil {
				return err
			}

			continue
		}

		next, err := transition(sec, marker)
		if err != nil {
			return err
		}

		sec = next
	}

	if sec != sectionTrailer {
		return ErrMissingMarkers
	}

	return nil
}

func transition(sec section, marker string) (section, error) {
	switch {
	case marker == MarkerSchemaBegin && sec == sectionHeader:
		return sectionSchema, nil
	case marker == MarkerSchemaEnd && sec == sectionSchema:
		return sectionBetween, nil
	case marker == MarkerValuesBegin && sec == sectionBetween:
		return sectionValues, nil
	case marker == MarkerValuesEnd && sec == sectionValues:
		return sectionTrailer, nil
	}

	return sec, ErrMarkerOrder
}

// markerOf returns the marker contained in line, if any.
func markerOf(line string) (string, bool) {
	for _, m := range []string{MarkerValuesBegin, MarkerValuesEnd, MarkerSchemaBegin, MarkerSchemaEnd} {
		if strings.Contains(line, m) {
			return m, true
		}
	}

	return "", false
}

// tableHeader returns the table name of a "# Table: <name>" line.
func tableHeader(line string) (string, bool) {
	rest, ok := strings.CutPrefix(textutil.Trim(line), TablePrefix)
	if !ok {
		return "", false
	}

	return textutil.Trim(rest), true
}
