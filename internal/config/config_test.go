package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/flatdb/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func Test_Load_Returns_Defaults_When_NoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := config.DefaultConfig()
	want.EffectiveCwd = dir
	want.DataDirAbs = filepath.Join(dir, "databases")

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	if cfg.Address() != ":3232" {
		t.Fatalf("Address=%q, want :3232", cfg.Address())
	}
}

func Test_Load_Applies_Precedence_When_AllSourcesPresent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := filepath.Join(dir, "xdg")

	writeFile(t, filepath.Join(xdg, "flatdb", "config.json"), `{
		// global
		"port": 4000,
		"username": "admin",
		"log_level": "debug",
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"port": 5000, "data_dir": "data"}`)

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: dir,
		DataDirOverride: "/srv/db",
		Env:             map[string]string{"XDG_CONFIG_HOME": xdg},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 5000 || cfg.Username != "admin" || cfg.DataDirAbs != "/srv/db" {
		t.Fatalf("got port=%d user=%q dir=%q", cfg.Port, cfg.Username, cfg.DataDirAbs)
	}

	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("Level=%v, want debug", cfg.Level())
	}

	want := config.Sources{
		Global:  filepath.Join(xdg, "flatdb", "config.json"),
		Project: filepath.Join(dir, config.FileName),
	}
	if diff := cmp.Diff(want, cfg.Sources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_Uses_ExplicitFile_Instead_Of_ProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"port": 5000}`)
	writeFile(t, filepath.Join(dir, "alt.json"), `{"host": "127.0.0.1"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, ConfigPath: "alt.json", PortOverride: 7000})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cfg.Address(), "127.0.0.1:7000"; got != want {
		t.Fatalf("Address=%q, want %q", got, want)
	}
}

func Test_Load_Fails_When_ConfigIsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "BadJSON", content: `{"port": }`, want: config.ErrConfigInvalid},
		{name: "EmptyDataDir", content: `{"data_dir": ""}`, want: config.ErrDataDirEmpty},
		{name: "BadPort", content: `{"port": 70000}`, want: config.ErrInvalidPort},
		{name: "BadLevel", content: `{"log_level": "loud"}`, want: config.ErrInvalidLogLevel},
		{name: "NegativeRate", content: `{"rate_limit": -1}`, want: config.ErrInvalidRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, config.FileName), tt.content)

			_, err := config.Load(config.LoadInput{WorkDirOverride: dir})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v, want %v", err, tt.want)
			}
		})
	}
}

func Test_Load_Fails_When_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.LoadInput{WorkDirOverride: t.TempDir(), ConfigPath: "nope.json"})
	if !errors.Is(err, config.ErrConfigFileNotFound) {
		t.Fatalf("err=%v, want %v", err, config.ErrConfigFileNotFound)
	}
}

func Test_Bootstrap_Writes_DefaultFile_And_DataDir_When_Fresh(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	written, err := config.Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if written != filepath.Join(dir, config.FileName) {
		t.Fatalf("written=%q", written)
	}

	if info, err := os.Stat(cfg.DataDirAbs); err != nil || !info.IsDir() {
		t.Fatalf("data dir not created: %v", err)
	}

	reloaded, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if diff := cmp.Diff(cfg, reloaded, cmpopts.IgnoreFields(config.Config{}, "Sources")); diff != "" {
		t.Fatalf("reloaded config differs (-before +after):\n%s", diff)
	}

	again, err := config.Bootstrap(reloaded)
	if err != nil || again != "" {
		t.Fatalf("second Bootstrap wrote %q, err=%v", again, err)
	}
}
