package cli

import (
	"fmt"
	"io"
)

// IO is the output side of one command run.
//
// Data goes to out, errors to errOut. A warning marks a result the command
// could still produce but that deserves attention, such as the empty
// array printed for a table that does not exist. Warnings are written to
// errOut ahead of the first data line and again by [IO.Finish], so they
// stay visible when the data is piped through head or tail, and they make
// the exit code 1.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

// NewIO returns an IO writing data to out and diagnostics to errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a warning: what happened, and a hint on how to fix it.
func (o *IO) Warn(issue string, hint string) {
	o.warnings = append(o.warnings, issue+" ("+hint+")")
}

// Println writes a data line.
func (o *IO) Println(a ...any) {
	o.begin()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted data.
func (o *IO) Printf(format string, a ...any) {
	o.begin()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes a diagnostic line.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish writes the warnings once more and returns the exit code: 1 if
// anything was warned about, 0 otherwise. When no data was written the
// warnings appear only here.
func (o *IO) Finish() int {
	o.started = true

	if len(o.warnings) == 0 {
		return 0
	}

	o.printWarnings()

	return 1
}

// begin prints pending warnings ahead of the first data line.
func (o *IO) begin() {
	if !o.started {
		o.printWarnings()
	}

	o.started = true
}

func (o *IO) printWarnings() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}
}
