// FILE: logscribe/src/internal/config/logging.go
package config

import (
	"fmt"
	"slices"

	lconfig "github.com/lixenwraith/config"
)

// LogConfig controls logscribe's own diagnostics. Shipped events never pass
// through it.
type LogConfig struct {
	Output  string            `toml:"output"` // file, stdout, stderr, both, none
	Level   string            `toml:"level"`  // debug, info, warn, error
	File    *LogFileConfig    `toml:"file"`
	Console *LogConsoleConfig `toml:"console"`
}

// LogFileConfig is used when output is file or both
type LogFileConfig struct {
	Directory      string  `toml:"directory"`
	Name           string  `toml:"name"`
	MaxSizeMB      int64   `toml:"max_size_mb"`
	MaxTotalSizeMB int64   `toml:"max_total_size_mb"`
	RetentionHours float64 `toml:"retention_hours"`
}

type LogConsoleConfig struct {
	Target string `toml:"target"` // stdout, stderr, split
	Format string `toml:"format"` // txt, json
}

var (
	logOutputs        = []string{"file", "stdout", "stderr", "both", "none"}
	logLevels         = []string{"debug", "info", "warn", "error"}
	logConsoleTargets = []string{"stdout", "stderr", "split"}
	logConsoleFormats = []string{"", "txt", "json"}
)

func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Output: "stderr",
		Level:  "info",
		File: &LogFileConfig{
			Directory:      "./log",
			Name:           "logscribe",
			MaxSizeMB:      100,
			MaxTotalSizeMB: 1000,
			RetentionHours: 168,
		},
		Console: &LogConsoleConfig{
			Target: "stderr",
			Format: "txt",
		},
	}
}

// writesFile reports whether the log file settings are in use
func (c *LogConfig) writesFile() bool {
	return c.Output == "file" || c.Output == "both"
}

func validateLogConfig(cfg *LogConfig) error {
	if cfg == nil {
		return fmt.Errorf("logging: section missing")
	}
	if err := oneOf("logging.output", cfg.Output, logOutputs); err != nil {
		return err
	}
	if err := oneOf("logging.level", cfg.Level, logLevels); err != nil {
		return err
	}

	if cfg.writesFile() {
		if cfg.File == nil {
			return fmt.Errorf("logging: output %q needs a [logging.file] section", cfg.Output)
		}
		if err := lconfig.NonEmpty(cfg.File.Name); err != nil {
			return fmt.Errorf("logging.file.name: %w", err)
		}
		if cfg.File.MaxSizeMB < 0 || cfg.File.MaxTotalSizeMB < 0 || cfg.File.RetentionHours < 0 {
			return fmt.Errorf("logging.file: size and retention limits cannot be negative")
		}
	}

	if cfg.Console != nil {
		if err := oneOf("logging.console.target", cfg.Console.Target, logConsoleTargets); err != nil {
			return err
		}
		if err := oneOf("logging.console.format", cfg.Console.Format, logConsoleFormats); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(key, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%s: %q is not one of %v", key, value, allowed)
	}
	return nil
}
