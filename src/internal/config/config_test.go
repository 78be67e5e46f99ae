// FILE: logscribe/src/internal/config/config_test.go
package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := defaults()
	applyDefaults(cfg)
	return cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, validateConfig(cfg))

	assert.Equal(t, "localhost:1463", cfg.Scribe.Address())
	assert.Equal(t, "message", cfg.Scribe.FieldRef)
	assert.Equal(t, "unknown", cfg.Scribe.DefaultCategory)
	assert.Empty(t, cfg.Scribe.RemovePrefix)
	assert.False(t, cfg.Scribe.AddNewline)
	assert.False(t, cfg.Scribe.FormatToJSON)
}

func TestScribeConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*ScribeConfig)
		wantErr string
	}{
		{name: "EmptyHost", mutate: func(c *ScribeConfig) { c.Host = "" }, wantErr: "host"},
		{name: "PortZero", mutate: func(c *ScribeConfig) { c.Port = 0 }, wantErr: "invalid port"},
		{name: "PortTooHigh", mutate: func(c *ScribeConfig) { c.Port = 70000 }, wantErr: "invalid port"},
		{name: "NoTimeout", mutate: func(c *ScribeConfig) { c.Timeout = 0 }, wantErr: "timeout"},
		{name: "EmptyFieldRef", mutate: func(c *ScribeConfig) { c.FieldRef = "" }, wantErr: "field_ref"},
		{name: "EmptyDefaultCategory", mutate: func(c *ScribeConfig) { c.DefaultCategory = "" }, wantErr: "default_category"},
		{name: "JSONModeIgnoresFieldRef", mutate: func(c *ScribeConfig) { c.FieldRef = ""; c.FormatToJSON = true }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultScribeConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestScribeConfig_TimeoutDuration(t *testing.T) {
	cfg := DefaultScribeConfig()
	assert.Equal(t, "30s", cfg.TimeoutDuration().String())
}

func TestValidateSources(t *testing.T) {
	t.Run("NoSources", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = nil
		assert.ErrorContains(t, validateConfig(cfg), "no sources")
	})

	t.Run("UnknownType", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{{Type: "file"}}
		applyDefaults(cfg)
		assert.ErrorContains(t, validateConfig(cfg), "unknown source type")
	})

	t.Run("DuplicatePort", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{
			{Type: "http", Port: 9880},
			{Type: "tcp", Port: 9880},
		}
		applyDefaults(cfg)
		assert.ErrorContains(t, validateConfig(cfg), "already used")
	})

	t.Run("MetricsPortClash", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{{Type: "http", Port: 9464}}
		cfg.Metrics.Enabled = true
		applyDefaults(cfg)
		assert.ErrorContains(t, validateConfig(cfg), "metrics")
	})

	t.Run("BadRateLimit", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{{Type: "tcp", Port: 24224, RateLimit: &RateLimitConfig{RequestsPerSecond: 0, BurstSize: 1}}}
		applyDefaults(cfg)
		assert.ErrorContains(t, validateConfig(cfg), "requests_per_second")
	})

	t.Run("BadStdinFormat", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{{Type: "stdin", Format: "xml"}}
		applyDefaults(cfg)
		assert.ErrorContains(t, validateConfig(cfg), "format")
	})
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		Sources: []SourceConfig{
			{Type: "stdin"},
			{Type: "http", Port: 9880},
			{Type: "tcp", Port: 24224, Tag: "fwd"},
		},
	}
	applyDefaults(cfg)

	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "stdin", cfg.Sources[0].Tag)
	assert.Equal(t, "json", cfg.Sources[0].Format)
	assert.Equal(t, int64(1000), cfg.Sources[0].BufferSize)
	assert.Equal(t, "0.0.0.0", cfg.Sources[1].Host)
	assert.Equal(t, int64(10*1024), cfg.Sources[1].MaxBodySizeKB)
	assert.Equal(t, "fwd", cfg.Sources[2].Tag)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestValidateBuffer(t *testing.T) {
	b := DefaultBufferConfig()
	require.NoError(t, validateBuffer(&b))

	b.FlushWorkers = 0
	assert.ErrorContains(t, validateBuffer(&b), "flush workers")
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, validateFilter(0, &FilterConfig{Patterns: []string{"a"}}))
	assert.Error(t, validateFilter(0, &FilterConfig{Type: "drop", Patterns: []string{"a"}}))
	assert.Error(t, validateFilter(0, &FilterConfig{Logic: "xor", Patterns: []string{"a"}}))
	assert.Error(t, validateFilter(0, &FilterConfig{Patterns: []string{"("}}))
}

func TestGetConfigPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("LOGSCRIBE_CONFIG_FILE", "")
	t.Setenv("LOGSCRIBE_CONFIG_DIR", dir)
	assert.Equal(t, filepath.Join(dir, "logscribe.toml"), GetConfigPath())

	t.Setenv("LOGSCRIBE_CONFIG_FILE", "custom.toml")
	assert.Equal(t, filepath.Join(dir, "custom.toml"), GetConfigPath())

	t.Setenv("LOGSCRIBE_CONFIG_FILE", "/abs/x.toml")
	assert.Equal(t, "/abs/x.toml", GetConfigPath())
}

func TestCustomEnvTransform(t *testing.T) {
	assert.Equal(t, "LOGSCRIBE_SCRIBE_REMOVE_PREFIX", customEnvTransform("scribe.remove_prefix"))
}

func TestValidateLogConfig(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(*LogConfig)
		wantErr string
	}{
		{name: "Defaults", modify: func(*LogConfig) {}},
		{name: "BadOutput", modify: func(c *LogConfig) { c.Output = "syslog" }, wantErr: "logging.output"},
		{name: "BadLevel", modify: func(c *LogConfig) { c.Level = "trace" }, wantErr: "logging.level"},
		{name: "BadTarget", modify: func(c *LogConfig) { c.Console.Target = "tty" }, wantErr: "logging.console.target"},
		{name: "EmptyFormat", modify: func(c *LogConfig) { c.Console.Format = "" }},
		{name: "FileWithoutSection", modify: func(c *LogConfig) {
			c.Output = "both"
			c.File = nil
		}, wantErr: "[logging.file]"},
		{name: "FileWithoutName", modify: func(c *LogConfig) {
			c.Output = "file"
			c.File.Name = ""
		}, wantErr: "logging.file.name"},
		{name: "NegativeRetention", modify: func(c *LogConfig) {
			c.Output = "file"
			c.File.RetentionHours = -1
		}, wantErr: "negative"},
		{name: "FileSettingsIgnoredForStderr", modify: func(c *LogConfig) { c.File = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultLogConfig()
			tc.modify(cfg)

			err := validateLogConfig(cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}

	assert.Error(t, validateLogConfig(nil))
}

func TestSaveToFile_Rejects(t *testing.T) {
	cfg := validConfig()
	assert.ErrorContains(t, cfg.SaveToFile(""), "path")

	cfg.Scribe.Port = 0
	assert.ErrorContains(t, cfg.SaveToFile(filepath.Join(t.TempDir(), "out.toml")), "invalid config")
}
