package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatdb/internal/store"
)

var (
	errWhereRequired = errors.New("--where is required")
	errSetRequired   = errors.New("--where and --set are required")
)

// InsertCmd returns the insert command.
func InsertCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("insert", flag.ContinueOnError),
		Usage: "insert <db> <table> <values>",
		Group: groupRows,
		Examples: []string{
			`insert shop items "1,widget"`,
		},
		Short: "Insert a row of comma separated values",
		Long: "Insert a row into a table. Values are comma separated in column\n" +
			"order, e.g. \"1,widget\". Values cannot contain commas or newlines.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db", "table", "values"); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			if err := st.Insert(ctx, args[0], args[1], args[2]); err != nil {
				return err
			}

			o.Println("inserted 1 row")

			return nil
		},
	}
}

// FetchCmd returns the fetch command.
func FetchCmd(a *app) *Command {
	flags := flag.NewFlagSet("fetch", flag.ContinueOnError)
	where := flags.StringP("where", "w", "", "Only rows where `field=value`")
	pretty := flags.Bool("pretty", false, "Indent the JSON output")

	return &Command{
		Flags: flags,
		Usage: "fetch <db> <table> [flags]",
		Group: groupRows,
		Examples: []string{
			"fetch shop items",
			"fetch shop items --where id=1 --pretty",
		},
		Short: "Print rows as a JSON array",
		Long: "Print the rows of a table as a JSON array of objects, in insertion\n" +
			"order. Values are strings.\n\n" +
			"A table without rows prints []. A missing database or table also\n" +
			"prints [] but exits 1 with a warning.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db", "table"); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			var res store.Result

			if flags.Changed("where") {
				field, value, werr := assignment("where", *where)
				if werr != nil {
					return werr
				}

				res, err = st.FetchFiltered(ctx, args[0], args[1], field, value)
			} else {
				res, err = st.Fetch(ctx, args[0], args[1])
			}

			if err := readFailure(o, res, err); err != nil {
				return err
			}

			data, err := res.JSON()
			if err != nil {
				return err
			}

			if *pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", "  "); err != nil {
					return fmt.Errorf("indenting rows: %w", err)
				}

				data = buf.Bytes()
			}

			o.Println(string(data))

			return nil
		},
	}
}

// UpdateCmd returns the update command.
func UpdateCmd(a *app) *Command {
	flags := flag.NewFlagSet("update", flag.ContinueOnError)
	where := flags.StringP("where", "w", "", "Rows to change, as `field=value` (required)")
	set := flags.StringP("set", "s", "", "New value, as `field=value` (required)")

	return &Command{
		Flags: flags,
		Usage: "update <db> <table> --where=<f=v> --set=<f=v>",
		Group: groupRows,
		Examples: []string{
			"update shop items --where id=1 --set name=gizmo",
		},
		Short: "Change one field of every matching row",
		Long: "Set a field on every row whose --where field equals the given value.\n" +
			"Prints the number of changed rows. Fails when no row matches.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db", "table"); err != nil {
				return err
			}

			if !flags.Changed("where") || !flags.Changed("set") {
				return errSetRequired
			}

			checkField, checkValue, err := assignment("where", *where)
			if err != nil {
				return err
			}

			field, value, err := assignment("set", *set)
			if err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			n, err := st.Update(ctx, args[0], args[1], checkField, checkValue, field, value)
			if err != nil {
				return err
			}

			o.Printf("updated %d %s\n", n, rowsWord(n))

			return nil
		},
	}
}

// DeleteRowCmd returns the delete-row command.
func DeleteRowCmd(a *app) *Command {
	flags := flag.NewFlagSet("delete-row", flag.ContinueOnError)
	where := flags.StringP("where", "w", "", "Rows to delete, as `field=value` (required)")

	return &Command{
		Flags: flags,
		Usage: "delete-row <db> <table> --where=<f=v>",
		Group: groupRows,
		Examples: []string{
			"delete-row shop items --where name=gizmo",
		},
		Short: "Delete every matching row",
		Long: "Delete every row whose --where field equals the given value.\n" +
			"Prints the number of deleted rows. Fails when no row matches.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db", "table"); err != nil {
				return err
			}

			if !flags.Changed("where") {
				return errWhereRequired
			}

			field, value, err := assignment("where", *where)
			if err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			n, err := st.DeleteRows(ctx, args[0], args[1], field, value)
			if err != nil {
				return err
			}

			o.Printf("deleted %d %s\n", n, rowsWord(n))

			return nil
		},
	}
}

func rowsWord(n int) string {
	if n == 1 {
		return "row"
	}

	return "rows"
}

// readFailure turns a not-found read into a warning, so the command still
// prints [] but exits 1. Other failures are returned.
func readFailure(o *IO, res store.Result, err error) error {
	switch res.Status {
	case store.StatusOK, store.StatusEmpty:
		return nil
	case store.StatusNotFound:
		o.Warn(err.Error(), "check the names with 'flatdb ls-db' and 'flatdb ls-tables'")

		return nil
	case store.StatusConflict, store.StatusMalformed, store.StatusInvalid, store.StatusFailed:
	}

	return err
}
