package cli_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/flatdb/internal/cli"
)

func Test_IO_Repeats_Warnings_Around_Data_When_DataWritten(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := cli.NewIO(&out, &errOut)
	o.Warn("table not found", "check the name")
	o.Println("[]")

	if got := o.Finish(); got != 1 {
		t.Errorf("Finish=%d, want 1", got)
	}

	if diff := cmp.Diff("[]\n", out.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}

	want := "warning: table not found (check the name)\nwarning: table not found (check the name)\n"
	if diff := cmp.Diff(want, errOut.String()); diff != "" {
		t.Errorf("stderr mismatch (-want +got):\n%s", diff)
	}
}

func Test_IO_Prints_Warnings_Once_When_NoData(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := cli.NewIO(&out, &errOut)
	o.Warn("table items: row 2 has 3 values", "fix the file")

	if got := o.Finish(); got != 1 {
		t.Errorf("Finish=%d, want 1", got)
	}

	if diff := cmp.Diff("warning: table items: row 2 has 3 values (fix the file)\n", errOut.String()); diff != "" {
		t.Errorf("stderr mismatch (-want +got):\n%s", diff)
	}

	if out.Len() != 0 {
		t.Errorf("stdout=%q, want empty", out.String())
	}
}

func Test_IO_Finish_Returns_Zero_When_NoWarnings(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := cli.NewIO(&out, &errOut)
	o.Printf("%d rows\n", 2)

	if got := o.Finish(); got != 0 {
		t.Errorf("Finish=%d, want 0", got)
	}

	if errOut.Len() != 0 {
		t.Errorf("stderr=%q, want empty", errOut.String())
	}
}
