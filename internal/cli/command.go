package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Help groups, in the order "flatdb --help" lists them.
const (
	groupDatabases = "Databases"
	groupTables    = "Tables"
	groupRows      = "Rows"
	groupTools     = "Server and tools"
)

var groupOrder = []string{groupDatabases, groupTables, groupRows, groupTools}

// Command is one flatdb subcommand.
//
// Commands are built fresh for every invocation (see app.lookup), so Exec
// can read parsed flag values from variables bound to Flags.
type Command struct {
	// Flags holds the command's own flags. Global flags are parsed by Run
	// before the command name.
	Flags *flag.FlagSet

	// Usage starts with the command name, followed by its arguments,
	// e.g. "fetch <db> <table> [flags]".
	Usage string

	// Group is the heading the command is listed under in the global help.
	Group string

	// Short is the one-line description in the global help.
	Short string

	// Long is the description in "flatdb <cmd> --help". Empty means Short.
	Long string

	// Examples are command lines without the leading "flatdb".
	Examples []string

	// Exec runs the command with the positional arguments left after flag
	// parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine returns the command's line in the global help.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-38s %s", c.Usage, c.Short)
}

// PrintHelp writes the help for "flatdb <cmd> --help" to w.
func (c *Command) PrintHelp(w io.Writer) {
	fprintln(w, "Usage: flatdb", c.Usage)
	fprintln(w)

	if c.Long != "" {
		fprintln(w, c.Long)
	} else {
		fprintln(w, c.Short)
	}

	if c.Flags != nil && c.Flags.HasFlags() {
		var buf strings.Builder

		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		c.Flags.SetOutput(io.Discard)

		fprintln(w)
		fprintln(w, "Flags:")
		_, _ = io.WriteString(w, buf.String())
	}

	if len(c.Examples) > 0 {
		fprintln(w)
		fprintln(w, "Examples:")

		for _, ex := range c.Examples {
			fprintln(w, "  flatdb", ex)
		}
	}
}

// Run parses args and executes the command. Returns exit code.
//
// A flag error prints the error and the command help to stderr; an Exec
// error prints only the error.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o.out)

			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o.errOut)

		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return 0
}
