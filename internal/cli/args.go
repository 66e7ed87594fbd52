package cli

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errMissingArgs    = errors.New("missing arguments")
	errUnexpectedArgs = errors.New("unexpected arguments")
	errBadAssignment  = errors.New("expected field=value")
)

// exactArgs checks that args holds one value per name.
func exactArgs(args []string, names ...string) error {
	if len(args) < len(names) {
		return fmt.Errorf("%w: %s", errMissingArgs, strings.Join(names[len(args):], ", "))
	}

	if len(args) > len(names) {
		return fmt.Errorf("%w: %s", errUnexpectedArgs, strings.Join(args[len(names):], " "))
	}

	return nil
}

// assignment splits "field=value". The value may be empty and may contain
// further '=' characters.
func assignment(flagName, s string) (string, string, error) {
	field, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(field) == "" {
		return "", "", fmt.Errorf("--%s %q: %w", flagName, s, errBadAssignment)
	}

	return field, value, nil
}
