// Package naming turns user supplied database and table names into safe
// identifiers and maps database names onto files.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DatabaseExt is the file extension of database files.
const DatabaseExt = ".db"

// ErrInvalidName is returned when a name sanitizes to nothing.
var ErrInvalidName = errors.New("invalid name")

// Sanitize trims name, lowercases it, turns inner spaces into underscores and
// drops every rune that is not an ASCII letter, digit or underscore.
//
// Accented letters are decomposed first so "Café" becomes "cafe" rather than
// "caf".
func Sanitize(name string) string {
	var b strings.Builder

	b.Grow(len(name))

	for _, r := range norm.NFKD.String(strings.TrimSpace(name)) {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}

	return b.String()
}

// SanitizeDatabase is [Sanitize] for database names. A trailing ".db"
// extension (any case) is stripped before sanitizing, so "Shop.db" and
// "shop" name the same database.
func SanitizeDatabase(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > len(DatabaseExt) && strings.EqualFold(trimmed[len(trimmed)-len(DatabaseExt):], DatabaseExt) {
		trimmed = trimmed[:len(trimmed)-len(DatabaseExt)]
	}

	return Sanitize(trimmed)
}

// DatabaseFileName returns the file name for a database name.
func DatabaseFileName(name string) (string, error) {
	clean := SanitizeDatabase(name)
	if clean == "" {
		return "", fmt.Errorf("%w: database %q", ErrInvalidName, name)
	}

	return clean + DatabaseExt, nil
}

// DatabasePath returns the path of the database file for name inside dir.
func DatabasePath(dir, name string) (string, error) {
	file, err := DatabaseFileName(name)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, file), nil
}

// TableName sanitizes a table name.
func TableName(name string) (string, error) {
	clean := Sanitize(name)
	if clean == "" {
		return "", fmt.Errorf("%w: table %q", ErrInvalidName, name)
	}

	return clean, nil
}

// DatabaseNameFromFile returns the database name for a directory entry name
// and whether the entry is a database file at all. Hidden files (temp files,
// lock files) never count.
func DatabaseNameFromFile(file string) (string, bool) {
	if strings.HasPrefix(file, ".") || !strings.HasSuffix(file, DatabaseExt) {
		return "", false
	}

	name := strings.TrimSuffix(file, DatabaseExt)
	if name == "" || Sanitize(name) != name {
		return "", false
	}

	return name, true
}
