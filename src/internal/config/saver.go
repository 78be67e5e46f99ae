// FILE: logscribe/src/internal/config/saver.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	lconfig "github.com/lixenwraith/config"
)

// SaveToFile writes the resolved configuration, defaults and overrides
// included, as TOML. Used by --dump-config.
func (c *Config) SaveToFile(path string) error {
	if err := lconfig.NonEmpty(path); err != nil {
		return fmt.Errorf("dump config: path: %w", err)
	}
	if err := validateConfig(c); err != nil {
		return fmt.Errorf("dump config: refusing to write invalid config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("dump config: %w", err)
		}
	}

	cfg, err := lconfig.NewBuilder().
		WithTarget(c).
		WithFile(path).
		WithFileFormat("toml").
		Build()
	if err != nil {
		return fmt.Errorf("dump config: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("dump config to %s: %w", path, err)
	}
	return nil
}
