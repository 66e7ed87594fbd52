package cli_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/flatdb/internal/cli"
)

func Test_Dump_Prints_YAML_When_DatabaseExists(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("create-table", "shop", "users", "--columns", "email", "--types", "text")
	c.MustRun("insert", "shop", "items", "1,widget")
	c.MustRun("insert", "shop", "items", "2,gadget")

	out := c.MustRun("dump", "shop")

	var got map[string]any
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("dump output is not YAML: %v\n%s", err, out)
	}

	want := map[string]any{
		"name": "shop",
		"tables": []any{
			map[string]any{
				"name": "items",
				"columns": []any{
					map[string]any{"name": "id", "type": "int"},
					map[string]any{"name": "name", "type": "text"},
				},
				"rows": []any{
					map[string]any{"id": "1", "name": "widget"},
					map[string]any{"id": "2", "name": "gadget"},
				},
			},
			map[string]any{
				"name":    "users",
				"columns": []any{map[string]any{"name": "email", "type": "text"}},
				"rows":    []any{},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}

	cli.AssertContains(t, out, `{id: "1", name: widget}`)
}

func Test_Dump_Warns_When_RowIsMalformed(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("insert", "shop", "items", "1,widget,extra")

	stdout, stderr, code := c.Run("dump", "shop")

	if code != 1 {
		t.Errorf("exitCode=%d, want=1", code)
	}

	cli.AssertContains(t, stdout, "1,widget,extra")
	cli.AssertContains(t, stderr, "warning: table items")
}

func Test_Dump_Raw_Prints_CanonicalFile(t *testing.T) {
	t.Parallel()

	c := setupShop(t)
	c.MustRun("insert", "shop", "items", "1,widget")

	if diff := cmp.Diff(c.ReadDB("shop"), c.MustRun("dump", "shop", "--raw")+"\n"); diff != "" {
		t.Errorf("raw dump mismatch (-file +dump):\n%s", diff)
	}
}
