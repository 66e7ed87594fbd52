package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatdb/internal/textutil"
)

var errColumnsRequired = errors.New("--columns and --types are required")

// CreateTableCmd returns the create-table command.
func CreateTableCmd(a *app) *Command {
	flags := flag.NewFlagSet("create-table", flag.ContinueOnError)
	columns := flags.String("columns", "", "Comma separated column names, e.g. \"id,name\"")
	types := flags.String("types", "", "Comma separated column types, e.g. \"int,text\"")

	return &Command{
		Flags: flags,
		Usage: "create-table <db> <table> --columns=<a,b> --types=<t1,t2>",
		Group: groupTables,
		Examples: []string{
			"create-table shop items --columns id,name --types int,text",
		},
		Short: "Create a table",
		Long: "Create a table in an existing database.\n\n" +
			"--columns and --types must list the same number of entries. Types\n" +
			"are stored as declared and not enforced.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db", "table"); err != nil {
				return err
			}

			if textutil.Trim(*columns) == "" || textutil.Trim(*types) == "" {
				return errColumnsRequired
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			err = st.CreateTable(ctx, args[0], args[1], textutil.Split(*columns, ","), textutil.Split(*types, ","))
			if err != nil {
				return err
			}

			o.Println("created", args[1])

			return nil
		},
	}
}

// DeleteTableCmd returns the delete-table command.
func DeleteTableCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("delete-table", flag.ContinueOnError),
		Usage: "delete-table <db> <table>",
		Group: groupTables,
		Examples: []string{
			"delete-table shop items",
		},
		Short: "Delete a table and its rows",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db", "table"); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			if err := st.DeleteTable(ctx, args[0], args[1]); err != nil {
				return err
			}

			o.Println("deleted", args[1])

			return nil
		},
	}
}

// ListTablesCmd returns the ls-tables command.
func ListTablesCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("ls-tables", flag.ContinueOnError),
		Usage: "ls-tables <db>",
		Group: groupTables,
		Examples: []string{
			"ls-tables shop",
		},
		Short: "List the tables of a database",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db"); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			tables, err := st.ListTables(ctx, args[0])
			if err != nil {
				return err
			}

			for _, table := range tables {
				o.Println(table)
			}

			return nil
		},
	}
}
