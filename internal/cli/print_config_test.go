package cli_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/flatdb/internal/cli"
	"github.com/calvinalkan/flatdb/internal/config"
)

func Test_PrintConfig_Shows_Defaults_When_NoConfigFile(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	out := c.MustRun("print-config")

	cli.AssertContains(t, out, "effective_cwd="+c.Dir)
	cli.AssertContains(t, out, "data_dir="+filepath.Join(c.Dir, "databases"))
	cli.AssertContains(t, out, "listen=:3232")
	cli.AssertContains(t, out, "auth=disabled")
	cli.AssertContains(t, out, "(defaults only)")
}

func Test_PrintConfig_Shows_ProjectConfig_When_FileExists(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("flatdb.json", `{
	// comments are allowed
	"data_dir": "data",
	"port": 8080,
	"username": "admin",
	"password": "secret", // trailing commas too
}`)

	out := c.MustRun("print-config")

	cli.AssertContains(t, out, "data_dir="+filepath.Join(c.Dir, "data"))
	cli.AssertContains(t, out, "listen=:8080")
	cli.AssertContains(t, out, "auth=enabled")
	cli.AssertContains(t, out, "project_config="+filepath.Join(c.Dir, "flatdb.json"))
	cli.AssertNotContains(t, out, "secret")
}

func Test_Config_Flag_Fails_When_FileMissing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("-c", "nope.json", "print-config")

	cli.AssertContains(t, stderr, "config file not found")
}

func Test_PrintConfig_Default_Prints_Template(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	out := c.MustRun("print-config", "--default")

	cli.AssertContains(t, out, "// flatdb configuration")

	data, err := hujson.Standardize([]byte(out))
	if err != nil {
		t.Fatalf("template is not JSONC: %v\n%s", err, out)
	}

	var got config.Config
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode template: %v", err)
	}

	if diff := cmp.Diff(config.DefaultConfig(), got); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}
}
