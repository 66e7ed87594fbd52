package cli_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/flatdb/internal/cli"
)

func setupShop(t *testing.T) *cli.CLI {
	t.Helper()

	c := cli.NewCLI(t)

	if got := c.MustRun("create-db", "Shop"); got != "shop" {
		t.Fatalf("create-db printed %q, want %q", got, "shop")
	}

	c.MustRun("create-table", "shop", "items", "--columns", "id, name", "--types", "int, text")

	return c
}

func Test_Scenario_Insert_Update_DeleteRow(t *testing.T) {
	t.Parallel()

	c := setupShop(t)

	if got, want := c.MustRun("insert", "shop", "items", "1,widget"), "inserted 1 row"; got != want {
		t.Errorf("insert=%q, want=%q", got, want)
	}

	c.MustRun("insert", "shop", "items", "2,gadget")

	if got, want := c.MustRun("fetch", "shop", "items"), `[{"id":"1","name":"widget"},{"id":"2","name":"gadget"}]`; got != want {
		t.Errorf("fetch=%s, want=%s", got, want)
	}

	if got, want := c.MustRun("update", "shop", "items", "--where", "id=1", "--set", "name=thing"), "updated 1 row"; got != want {
		t.Errorf("update=%q, want=%q", got, want)
	}

	if got, want := c.MustRun("delete-row", "shop", "items", "-w", "id=2"), "deleted 1 row"; got != want {
		t.Errorf("delete-row=%q, want=%q", got, want)
	}

	if got, want := c.MustRun("fetch", "shop", "items"), `[{"id":"1","name":"thing"}]`; got != want {
		t.Errorf("fetch=%s, want=%s", got, want)
	}

	want := `# flatdb database file
# Markers and table blocks are parsed line by line; keep one entry per line.
Name: shop
[TABLE_BEGIN]
# Table: items
# Columns: id int, name text

id int
name text

[TABLE_END]
[TABLE_VALUE_BEGIN]
# Table: items
1,thing
[TABLE_VALUE_END]
`
	if diff := cmp.Diff(want, c.ReadDB("shop")); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func Test_Fetch_Filters_When_WhereGiven(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("insert", "shop", "items", "1,widget")
	c.MustRun("insert", "shop", "items", "2,gadget")
	c.MustRun("insert", "shop", "items", "3,widget")

	got := c.MustRun("fetch", "shop", "items", "--where", "name=widget", "--pretty")
	want := `[
  {
    "id": "1",
    "name": "widget"
  },
  {
    "id": "3",
    "name": "widget"
  }
]`

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fetch mismatch (-want +got):\n%s", diff)
	}

	if got := c.MustRun("fetch", "shop", "items", "--where", "name=nothing"); got != "[]" {
		t.Errorf("fetch=%q, want []", got)
	}
}

func Test_Fetch_Warns_When_TableMissing(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	stdout, stderr, code := c.Run("fetch", "shop", "orders")

	if code != 1 {
		t.Errorf("exitCode=%d, want=1", code)
	}

	if stdout != "[]\n" {
		t.Errorf("stdout=%q, want %q", stdout, "[]\n")
	}

	cli.AssertContains(t, stderr, "warning:")
	cli.AssertContains(t, stderr, "table not found")
}

func Test_Fetch_Fails_When_RowIsMalformed(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("insert", "shop", "items", "1,widget,extra")

	stderr := c.MustFail("fetch", "shop", "items")
	cli.AssertContains(t, stderr, "malformed")
}

func Test_Fetch_Fails_When_WhereHasNoEquals(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	stderr := c.MustFail("fetch", "shop", "items", "--where", "name")

	cli.AssertContains(t, stderr, "expected field=value")
}

func Test_Update_Fails_When_NothingMatches(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("insert", "shop", "items", "1,widget")

	stderr := c.MustFail("update", "shop", "items", "--where", "id=9", "--set", "name=x")
	cli.AssertContains(t, stderr, "no matching rows")

	stderr = c.MustFail("update", "shop", "items", "--where", "id=1")
	cli.AssertContains(t, stderr, "--where and --set are required")

	stderr = c.MustFail("delete-row", "shop", "items")
	cli.AssertContains(t, stderr, "--where is required")
}

func Test_Insert_Fails_When_TableMissing(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	stderr := c.MustFail("insert", "shop", "orders", "1")

	cli.AssertContains(t, stderr, "insert: table not found (db=shop table=orders)")
}

func Test_Fetch_Returns_InsertionOrder_When_FilteredAfterUpdate(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("insert", "shop", "items", " 1 , widget ")
	c.MustRun("insert", "shop", "items", "2,gadget")
	c.MustRun("insert", "shop", "items", "3,gizmo")
	c.MustRun("update", "shop", "items", "--where", "id=3", "--set", "name=widget")

	want := []map[string]string{
		{"id": "1", "name": "widget"},
		{"id": "3", "name": "widget"},
	}
	if diff := cmp.Diff(want, c.Rows("shop", "items", "-w", "name=widget")); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	if got := c.Rows("shop", "items", "-w", "id=9"); len(got) != 0 {
		t.Errorf("rows=%v, want none", got)
	}
}
