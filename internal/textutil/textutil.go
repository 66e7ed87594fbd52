// Package textutil holds the line and field helpers the record format is
// built on.
//
// Every helper works on plain strings. Line splitting accepts both "\n" and
// "\r\n" endings so files touched by other editors still parse.
package textutil

import (
	"errors"
	"strings"
)

// cutset is the horizontal whitespace removed by [Trim].
const cutset = " \t\r"

// Trim removes leading and trailing spaces, tabs and carriage returns.
// Newlines are kept.
func Trim(s string) string {
	return strings.Trim(s, cutset)
}

// Split splits s on sep and trims every part.
//
// Empty parts are kept, so "a,,b" yields three fields. Row decoding depends
// on this: an empty value is still a value.
func Split(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = Trim(p)
	}

	return parts
}

// ErrUnterminatedQuote is returned by [Args] for a line with an odd number
// of double quotes.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Args splits a command line into words on whitespace. Double quotes group
// words, so `insert shop items "1,blue widget"` yields three arguments
// after the command. A quoted empty string is kept as an empty argument.
func Args(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()

				started = false
			}
		default:
			cur.WriteRune(r)

			started = true
		}
	}

	if inQuote {
		return nil, ErrUnterminatedQuote
	}

	if started {
		args = append(args, cur.String())
	}

	return args, nil
}

// Replace returns s with every occurrence of old replaced by replacement.
// An empty old returns s unchanged.
func Replace(s, old, replacement string) string {
	if old == "" {
		return s
	}

	return strings.ReplaceAll(s, old, replacement)
}

// CountWords returns the number of whitespace separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// FirstWord returns the first whitespace separated word of s, or "".
func FirstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// IsBlank reports whether line holds nothing but whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Lines splits s into lines without their terminators.
//
// A trailing newline does not produce a trailing empty line, and "\r\n"
// endings are normalised.
func Lines(s string) []string {
	if s == "" {
		return nil
	}

	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")

	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	return lines
}
