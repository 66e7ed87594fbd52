package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

const defaultHeader = `// flatdb configuration (JSON with comments).
// password may be plain text or a bcrypt hash ("$2a$...").
`

// DefaultFile renders the default configuration as a commented JSONC file.
func DefaultFile() ([]byte, error) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encoding default config: %w", err)
	}

	value, err := hujson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("formatting default config: %w", err)
	}

	value.Format()

	return append([]byte(defaultHeader), value.Pack()...), nil
}

// Bootstrap prepares a fresh installation: it writes the default project
// config file in workDir when no config file was loaded, and creates the
// data directory. It returns the path of the file it wrote, if any.
func Bootstrap(cfg Config) (string, error) {
	var written string

	if !cfg.Sources.Loaded() {
		path := filepath.Join(cfg.EffectiveCwd, FileName)

		data, err := DefaultFile()
		if err != nil {
			return "", err
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)

		switch {
		case errors.Is(err, os.ErrExist):
		case err != nil:
			return "", fmt.Errorf("creating config file: %w", err)
		default:
			_, writeErr := f.Write(data)
			closeErr := f.Close()

			if err := errors.Join(writeErr, closeErr); err != nil {
				return "", fmt.Errorf("writing config file: %w", err)
			}

			written = path
		}
	}

	if err := os.MkdirAll(cfg.DataDirAbs, 0o750); err != nil {
		return written, fmt.Errorf("creating data directory: %w", err)
	}

	return written, nil
}
