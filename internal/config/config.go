// Package config loads flatdb configuration from JSONC files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data-dir cannot be empty")
	ErrInvalidPort        = errors.New("port must be between 1 and 65535")
	ErrInvalidLogLevel    = errors.New("unknown log level")
	ErrInvalidRateLimit   = errors.New("rate limit cannot be negative")
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataDir   string  `json:"data_dir"`
	Host      string  `json:"host"`
	Port      int     `json:"port"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	LogLevel  string  `json:"log_level"`
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	DataDirAbs   string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Loaded reports whether any config file contributed.
func (s Sources) Loaded() bool {
	return s.Global != "" || s.Project != ""
}

// Defaults.
const (
	DefaultDataDir  = "databases"
	DefaultPort     = 3232
	DefaultLogLevel = "info"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir,
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,
	}
}

// FileName is the project config file name.
const FileName = "flatdb.json"

// Address returns host:port for listening.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Level returns the configured log level.
func (c Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)

	return level
}

// AuthEnabled reports whether requests must carry credentials.
func (c Config) AuthEnabled() bool {
	return c.Username != "" || c.Password != ""
}

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/flatdb/config.json if set, otherwise
// ~/.config/flatdb/config.json. Empty if neither variable is set.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "flatdb", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "flatdb", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	DataDirOverride string            // --data-dir flag value; empty means no override
	PortOverride    int               // --port flag value; zero means no override
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/flatdb/config.json)
// 3. Project config file (flatdb.json in the working directory, if exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
//
// DataDirAbs in the returned Config is absolute.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	if path := globalPath(input.Env); path != "" {
		fileCfg, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = path
			cfg = merge(cfg, fileCfg)
		}
	}

	projectPath, mustExist := filepath.Join(workDir, FileName), false

	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
	}

	fileCfg, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
		cfg = merge(cfg, fileCfg)
	}

	if input.DataDirOverride != "" {
		cfg.DataDir = input.DataDirOverride
	}

	if input.PortOverride != 0 {
		cfg.Port = input.PortOverride
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.DataDir) {
		cfg.DataDirAbs = cfg.DataDir
	} else {
		cfg.DataDirAbs = filepath.Join(workDir, cfg.DataDir)
	}

	return cfg, nil
}

// fileConfig is a parsed config file. Pointer fields distinguish "absent"
// from "set to the zero value".
type fileConfig struct {
	DataDir   *string  `json:"data_dir"`
	Host      *string  `json:"host"`
	Port      *int     `json:"port"`
	Username  *string  `json:"username"`
	Password  *string  `json:"password"`
	LogLevel  *string  `json:"log_level"`
	RateLimit *float64 `json:"rate_limit"`
	RateBurst *int     `json:"rate_burst"`
}

// loadFile loads a config file. If mustExist is false, a missing file
// returns loaded=false.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if cfg.DataDir != nil && strings.TrimSpace(*cfg.DataDir) == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrDataDirEmpty)
	}

	return cfg, true, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.DataDir != nil {
		base.DataDir = *overlay.DataDir
	}

	if overlay.Host != nil {
		base.Host = *overlay.Host
	}

	if overlay.Port != nil {
		base.Port = *overlay.Port
	}

	if overlay.Username != nil {
		base.Username = *overlay.Username
	}

	if overlay.Password != nil {
		base.Password = *overlay.Password
	}

	if overlay.LogLevel != nil {
		base.LogLevel = *overlay.LogLevel
	}

	if overlay.RateLimit != nil {
		base.RateLimit = *overlay.RateLimit
	}

	if overlay.RateBurst != nil {
		base.RateBurst = *overlay.RateBurst
	}

	return base
}

// Validate checks a merged configuration.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return ErrDataDirEmpty
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}

	if cfg.RateLimit < 0 || cfg.RateBurst < 0 {
		return ErrInvalidRateLimit
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level

	if s == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}

	return level, nil
}
