package cli

import (
	"bytes"
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/flatdb/internal/format"
	"github.com/calvinalkan/flatdb/internal/rowjson"
)

type dumpDoc struct {
	Name   string      `yaml:"name"`
	Tables []dumpTable `yaml:"tables"`
}

type dumpTable struct {
	Name    string          `yaml:"name"`
	Columns []format.Column `yaml:"columns"`
	// Rows are flow mappings in column order, or plain strings for rows
	// whose value count does not match the columns.
	Rows []*yaml.Node `yaml:"rows"`
}

// DumpCmd returns the dump command.
func DumpCmd(a *app) *Command {
	flags := flag.NewFlagSet("dump", flag.ContinueOnError)
	raw := flags.Bool("raw", false, "Print the file in its canonical text form instead of YAML")

	return &Command{
		Flags: flags,
		Usage: "dump <db> [flags]",
		Group: groupTools,
		Examples: []string{
			"dump shop",
			"dump shop --raw",
		},
		Short: "Print a whole database as YAML",
		Long: "Parse a database file and print every table with its columns and\n" +
			"rows. Rows are listed in insertion order.\n\n" +
			"With --raw the parsed file is written back out in canonical form,\n" +
			"which is what the next mutation would store.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args, "db"); err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			doc, err := st.Dump(ctx, args[0])
			if err != nil {
				return err
			}

			if *raw {
				o.Printf("%s", doc.Bytes())

				return nil
			}

			out, err := dumpYAML(o, doc)
			if err != nil {
				return err
			}

			o.Printf("%s", out)

			return nil
		},
	}
}

func dumpYAML(o *IO, doc *format.Document) ([]byte, error) {
	d := dumpDoc{Name: doc.Name, Tables: []dumpTable{}}

	for _, t := range doc.Tables() {
		dt := dumpTable{Name: t.Name, Columns: t.Columns, Rows: []*yaml.Node{}}
		if len(t.Rows) == 0 {
			d.Tables = append(d.Tables, dt)

			continue
		}

		objects, err := rowjson.Map(t.FieldNames(), t.Rows)
		if err != nil {
			o.Warn(fmt.Sprintf("table %s: %v", t.Name, err), "fix the rows in the database file")

			for _, row := range t.Rows {
				dt.Rows = append(dt.Rows, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row})
			}
		} else {
			for _, obj := range objects {
				dt.Rows = append(dt.Rows, rowNode(obj))
			}
		}

		d.Tables = append(d.Tables, dt)
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}

	return buf.Bytes(), nil
}

func rowNode(obj rowjson.Object) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}

	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: pair.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Value},
		)
	}

	return n
}
