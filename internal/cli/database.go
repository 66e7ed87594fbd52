package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// CreateDBCmd returns the create-db command.
func CreateDBCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("create-db", flag.ContinueOnError),
		Usage: "create-db <name>",
		Group: groupDatabases,
		Examples: []string{
			"create-db shop",
		},
		Short: "Create an empty database, prints its name",
		Long: "Create an empty database file in the data directory.\n\n" +
			"The name is sanitized: lowercased, accents removed, spaces become\n" +
			"underscores and anything else outside [a-z0-9_] is dropped. The\n" +
			"resulting name is printed.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "name"); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			name, err := st.CreateDatabase(ctx, args[0])
			if err != nil {
				return err
			}

			o.Println(name)

			return nil
		},
	}
}

// DeleteDBCmd returns the delete-db command.
func DeleteDBCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("delete-db", flag.ContinueOnError),
		Usage: "delete-db <name>",
		Group: groupDatabases,
		Examples: []string{
			"delete-db shop",
		},
		Short: "Delete a database and all its tables",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "name"); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			if err := st.DeleteDatabase(ctx, args[0]); err != nil {
				return err
			}

			o.Println("deleted", args[0])

			return nil
		},
	}
}

// ListDBCmd returns the ls-db command.
func ListDBCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("ls-db", flag.ContinueOnError),
		Usage: "ls-db",
		Group: groupDatabases,
		Short: "List databases",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			names, err := st.ListDatabases(ctx)
			if err != nil {
				return err
			}

			for _, name := range names {
				o.Println(name)
			}

			return nil
		},
	}
}
