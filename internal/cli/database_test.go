package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/flatdb/internal/cli"
)

func Test_ListDB_Prints_SanitizedNames_When_DatabasesExist(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	if got := c.MustRun("ls-db"); got != "" {
		t.Errorf("ls-db on empty dir=%q, want empty", got)
	}

	c.MustRun("create-db", "Café Orders")
	c.MustRun("create-db", "shop.db")

	if got, want := c.MustRun("ls-db"), "cafe_orders\nshop"; got != want {
		t.Errorf("ls-db=%q, want=%q", got, want)
	}
}

func Test_CreateDB_Fails_When_DatabaseExists(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("create-db", "shop")

	stderr := c.MustFail("create-db", "SHOP")
	cli.AssertContains(t, stderr, "database already exists")
}

func Test_DeleteDB_Removes_File(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("create-db", "shop")
	c.MustRun("delete-db", "shop")

	if _, err := os.Stat(filepath.Join(c.DataDir(), "shop.db")); !os.IsNotExist(err) {
		t.Errorf("shop.db still exists: %v", err)
	}

	stderr := c.MustFail("delete-db", "shop")
	cli.AssertContains(t, stderr, "database not found")
}

func Test_Tables_Create_List_Delete(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("create-table", "shop", "users", "--columns", "email", "--types", "text")

	if got, want := c.MustRun("ls-tables", "shop"), "items\nusers"; got != want {
		t.Errorf("ls-tables=%q, want=%q", got, want)
	}

	stderr := c.MustFail("create-table", "shop", "users", "--columns", "x", "--types", "int")
	cli.AssertContains(t, stderr, "table already exists")

	c.MustRun("delete-table", "shop", "items")

	if got, want := c.MustRun("ls-tables", "shop"), "users"; got != want {
		t.Errorf("ls-tables=%q, want=%q", got, want)
	}

	stderr = c.MustFail("ls-tables", "ghost")
	cli.AssertContains(t, stderr, "database not found")
}

func Test_CreateTable_Fails_When_ColumnsInvalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("create-db", "shop")

	stderr := c.MustFail("create-table", "shop", "items")
	cli.AssertContains(t, stderr, "--columns and --types are required")

	stderr = c.MustFail("create-table", "shop", "items", "--columns", "a,b", "--types", "int")
	cli.AssertContains(t, stderr, "invalid columns")
}

func Test_DataDir_Flag_Overrides_Config(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("--data-dir", "other", "create-db", "shop")

	if _, err := os.Stat(filepath.Join(c.Dir, "other", "shop.db")); err != nil {
		t.Errorf("database not created in --data-dir: %v", err)
	}
}
