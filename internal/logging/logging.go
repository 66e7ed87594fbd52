// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Options configures [New].
type Options struct {
	// Level is shared with the caller so the level can change at runtime.
	Level *slog.LevelVar

	// NoTime drops the time attribute, e.g. under systemd which adds its own.
	NoTime bool
}

// New returns a tint logger writing to w.
//
// When w is a terminal the output is coloured (through go-colorable, so
// Windows consoles work too). Attributes with zero values are dropped.
func New(w io.Writer, opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = &slog.LevelVar{}
	}

	noColor := true

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		noColor = false
		w = colorable.NewColorable(f)
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if opts.NoTime && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}

			if isZero(a.Value) {
				return slog.Attr{}
			}

			return a
		},
	}))
}

// NewFromEnv is [New] on stderr, dropping timestamps when JOURNAL_STREAM is
// set.
func NewFromEnv(env map[string]string, level *slog.LevelVar, stderr io.Writer) *slog.Logger {
	return New(stderr, Options{Level: level, NoTime: env["JOURNAL_STREAM"] != ""})
}

func isZero(v slog.Value) bool {
	switch t := v.Any().(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case uint64:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case time.Time:
		return t.IsZero()
	case time.Duration:
		return t == 0
	case nil:
		return true
	}

	return false
}
