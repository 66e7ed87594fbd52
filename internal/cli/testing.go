package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/flatdb/internal/config"
	"github.com/calvinalkan/flatdb/internal/naming"
)

// CLI runs flatdb in-process for tests.
//
// Every CLI gets its own working directory, so databases created by one test
// land in Dir/databases and never meet another test's. Env starts empty:
// no global config file and no HOME, so the shell keeps no history.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI returns a CLI rooted in a fresh temp directory.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run runs "flatdb --cwd Dir args..." and returns stdout, stderr and the
// exit code.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.run(nil, args)
}

// Shell feeds script to "flatdb shell" as its input, one command per line.
func (r *CLI) Shell(script string) (string, string, int) {
	return r.run(strings.NewReader(script), []string{"shell"})
}

func (r *CLI) run(in io.Reader, args []string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"flatdb", "--cwd", r.Dir}, args...)
	code := Run(in, &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun runs the command, fails the test on a non-zero exit, and returns
// trimmed stdout.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("flatdb %s: exit code %d\nstderr: %s", strings.Join(args, " "), code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail runs the command, fails the test if it exits 0 or prints
// anything to stdout, and returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("flatdb %s: should have failed\nstdout: %s", strings.Join(args, " "), stdout)
	}

	if stdout != "" {
		r.t.Fatalf("flatdb %s: failed but printed to stdout\nstdout: %s", strings.Join(args, " "), stdout)
	}

	return strings.TrimSpace(stderr)
}

// Rows runs "fetch db table flags..." and decodes the JSON rows.
func (r *CLI) Rows(db, table string, flags ...string) []map[string]string {
	r.t.Helper()

	out := r.MustRun(append([]string{"fetch", db, table}, flags...)...)

	var rows []map[string]string
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		r.t.Fatalf("fetch %s %s: output is not a JSON row array: %v\n%s", db, table, err, out)
	}

	return rows
}

// DataDir returns the default data directory below Dir.
func (r *CLI) DataDir() string {
	return filepath.Join(r.Dir, config.DefaultDataDir)
}

// ReadDB returns the raw text of a database file in DataDir.
func (r *CLI) ReadDB(name string) string {
	r.t.Helper()

	path, err := naming.DatabasePath(r.DataDir(), name)
	if err != nil {
		r.t.Fatalf("database name %q: %v", name, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		r.t.Fatalf("read database %s: %v", name, err)
	}

	return string(content)
}

// WriteFile writes content to a file relative to Dir, creating parents.
// Tests use it for config files and hand-edited databases.
func (r *CLI) WriteFile(rel, content string) {
	r.t.Helper()

	path := filepath.Join(r.Dir, rel)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		r.t.Fatalf("create dir for %s: %v", rel, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		r.t.Fatalf("write %s: %v", rel, err)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
