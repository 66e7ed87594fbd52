package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatdb/internal/textutil"
)

const shellPrompt = "flatdb> "

// lineReader is the input side of the shell. *liner.State implements it
// for terminals, scanReader for everything else.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

type scanReader struct {
	sc *bufio.Scanner
}

func (r scanReader) Prompt(string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return r.sc.Text(), nil
}

func (scanReader) AppendHistory(string) {}

func (scanReader) Close() error { return nil }

// ShellCmd returns the shell command.
func ShellCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Group: groupTools,
		Short: "Interactive prompt for the other commands",
		Long: "Read commands line by line and run them against the data directory.\n" +
			"Lines use the command syntax without the leading 'flatdb'. Double\n" +
			"quotes group words, e.g. insert shop items \"1,blue widget\".\n\n" +
			"On a terminal the shell keeps history in ~/.flatdb_history and\n" +
			"completes command names with Tab. Type 'exit' or press Ctrl-D to leave.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}

			sh := &shell{app: a, out: o}

			return sh.run(ctx)
		},
	}
}

type shell struct {
	app *app
	out *IO

	reader  lineReader
	history string
}

func (s *shell) run(ctx context.Context) error {
	s.open()
	defer s.close()

	for ctx.Err() == nil {
		line, err := s.reader.Prompt(shellPrompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = textutil.Trim(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s.reader.AppendHistory(line)

		if !s.exec(ctx, line) {
			return nil
		}
	}

	return nil
}

// exec runs one line. It returns false when the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	words, err := textutil.Args(line)
	if err != nil {
		s.out.ErrPrintln("error:", err)

		return true
	}

	if len(words) == 0 {
		return true
	}

	switch words[0] {
	case "exit", "quit", "q":
		return false
	case "help", "?":
		for _, cmd := range s.commands() {
			s.out.Println(cmd.HelpLine())
		}

		s.out.Println((&Command{Usage: "exit", Short: "Leave the shell"}).HelpLine())

		return true
	}

	cmd := s.lookup(words[0])
	if cmd == nil {
		s.out.ErrPrintln("error: unknown command:", words[0], "(type 'help' for commands)")

		return true
	}

	lineIO := NewIO(s.out.out, s.out.errOut)
	cmd.Run(ctx, lineIO, words[1:])
	lineIO.Finish()

	return true
}

// commands are the commands available in the shell: all except the
// long running ones.
func (s *shell) commands() []*Command {
	var cmds []*Command

	for _, cmd := range s.app.commands() {
		switch cmd.Name() {
		case "shell", "serve":
			continue
		}

		cmds = append(cmds, cmd)
	}

	return cmds
}

func (s *shell) lookup(name string) *Command {
	for _, cmd := range s.commands() {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

func (s *shell) open() {
	f, ok := s.app.in.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		in := s.app.in
		if in == nil {
			in = strings.NewReader("")
		}

		s.reader = scanReader{sc: bufio.NewScanner(in)}

		return
	}

	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(s.complete)

	if home := s.app.env["HOME"]; home != "" {
		s.history = filepath.Join(home, ".flatdb_history")

		if hf, err := os.Open(s.history); err == nil {
			_, _ = state.ReadHistory(hf)
			_ = hf.Close()
		}
	}

	s.reader = state
}

func (s *shell) close() {
	if state, ok := s.reader.(*liner.State); ok && s.history != "" {
		if hf, err := os.Create(s.history); err == nil {
			_, _ = state.WriteHistory(hf)
			_ = hf.Close()
		}
	}

	_ = s.reader.Close()
}

// complete completes command names.
func (s *shell) complete(line string) []string {
	var out []string

	for _, cmd := range s.commands() {
		if strings.HasPrefix(cmd.Name(), line) {
			out = append(out, cmd.Name())
		}
	}

	for _, word := range []string{"help", "exit"} {
		if strings.HasPrefix(word, line) {
			out = append(out, word)
		}
	}

	return out
}
