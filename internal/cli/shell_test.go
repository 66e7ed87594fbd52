package cli_test

import (
	"testing"

	"github.com/calvinalkan/flatdb/internal/cli"
)

func Test_Shell_Runs_Commands_From_Input(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	input := `create-db shop
create-table shop items --columns id,name --types int,text
# comments and blank lines are skipped

insert shop items "1,blue widget"
fetch shop items
bogus
insert "oops
exit
ls-db
`

	stdout, stderr, code := c.Shell(input)

	if code != 0 {
		t.Fatalf("exitCode=%d, want=0\nstderr: %s", code, stderr)
	}

	want := "shop\ncreated items\ninserted 1 row\n" + `[{"id":"1","name":"blue widget"}]` + "\n"
	if stdout != want {
		t.Errorf("stdout=%q, want=%q", stdout, want)
	}

	cli.AssertContains(t, stderr, "unknown command: bogus")
	cli.AssertContains(t, stderr, "unterminated quote")
}

func Test_Shell_Reports_CommandErrors_And_Continues(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, code := c.Shell("insert shop items 1\nserve\ncreate-db shop\n")

	if code != 0 {
		t.Fatalf("exitCode=%d, want=0", code)
	}

	if stdout != "shop\n" {
		t.Errorf("stdout=%q, want=%q", stdout, "shop\n")
	}

	cli.AssertContains(t, stderr, "database not found")
	cli.AssertContains(t, stderr, "unknown command: serve")
}
