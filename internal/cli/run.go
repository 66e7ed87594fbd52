// Package cli implements the flatdb command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatdb/internal/config"
	"github.com/calvinalkan/flatdb/internal/logging"
	"github.com/calvinalkan/flatdb/internal/store"
)

// app is the state shared by all commands of one invocation. It is filled
// in after config loading, so commands read it at Exec time.
type app struct {
	cfg    config.Config
	env    map[string]string
	in     io.Reader
	errOut io.Writer
	level  *slog.LevelVar
	log    *slog.Logger
}

// openStore opens the store in the configured data directory.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, store.Options{Dir: a.cfg.DataDirAbs, Logger: a.log})
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}

	return st, nil
}

// commands returns every command, in help order.
func (a *app) commands() []*Command {
	return []*Command{
		CreateDBCmd(a),
		DeleteDBCmd(a),
		ListDBCmd(a),
		CreateTableCmd(a),
		DeleteTableCmd(a),
		ListTablesCmd(a),
		InsertCmd(a),
		FetchCmd(a),
		UpdateCmd(a),
		DeleteRowCmd(a),
		DumpCmd(a),
		ServeCmd(a),
		ShellCmd(a),
		PrintConfigCmd(a),
	}
}

// lookup returns a fresh command by name, or nil. Commands hold parsed flag
// state, so every invocation gets its own.
func (a *app) lookup(name string) *Command {
	for _, cmd := range a.commands() {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

// Run is the main entry point. Returns exit code.
//
// The first signal received on sigCh cancels the running command; sigCh may
// be nil.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	a := &app{env: env, in: in, errOut: errOut, level: &slog.LevelVar{}}

	if len(args) < 2 {
		printUsage(out, globalFlags(), a.commands())

		return 0
	}

	globals := globalFlags()

	err := globals.Parse(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals, a.commands())

		return 1
	}

	if help, _ := globals.GetBool("help"); help {
		printUsage(out, globals, a.commands())

		return 0
	}

	rest := globals.Args()
	if len(rest) == 0 {
		fprintln(errOut, "error: no command provided")
		fprintln(errOut)
		printUsage(errOut, globals, a.commands())

		return 1
	}

	cmd := a.lookup(rest[0])
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", rest[0])
		fprintln(errOut)
		printUsage(errOut, globals, a.commands())

		return 1
	}

	workDir, _ := globals.GetString("cwd")
	configPath, _ := globals.GetString("config")
	dataDir, _ := globals.GetString("data-dir")

	if globals.Changed("data-dir") && strings.TrimSpace(dataDir) == "" {
		fprintln(errOut, "error:", config.ErrDataDirEmpty)
		fprintln(errOut)
		printUsage(errOut, globals, a.commands())

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: workDir,
		ConfigPath:      configPath,
		DataDirOverride: dataDir,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	a.cfg = cfg
	a.level.Set(cfg.Level())
	a.log = logging.NewFromEnv(env, a.level, errOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)

	if code := cmd.Run(ctx, o, rest[1:]); code != 0 {
		return code
	}

	return o.Finish()
}

func globalFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("flatdb", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(&strings.Builder{})
	fs.StringP("cwd", "C", "", "Run as if started in `dir`")
	fs.StringP("config", "c", "", "Use specified config `file`")
	fs.String("data-dir", "", "Override the database `dir`ectory")
	fs.BoolP("help", "h", false, "Show help")

	return fs
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, "flatdb - tables in plain text database files")
	fprintln(w)
	fprintln(w, "Usage: flatdb [global flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})

	_, _ = io.WriteString(w, buf.String())

	fprintln(w)
	fprintln(w, "Commands:")

	for _, group := range groupOrder {
		fprintln(w)
		fprintln(w, " ", group)

		for _, cmd := range commands {
			if cmd.Group == group {
				fprintln(w, cmd.HelpLine())
			}
		}
	}

	fprintln(w)
	fprintln(w, "Run 'flatdb <command> --help' for command flags.")
}
