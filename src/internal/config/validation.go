// FILE: logscribe/src/internal/config/validation.go
package config

import (
	"fmt"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// applyDefaults fills per-source and per-section zero values that the
// defaults struct cannot express for list elements
func applyDefaults(cfg *Config) {
	if cfg.Logging == nil {
		cfg.Logging = DefaultLogConfig()
	}

	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		if s.BufferSize <= 0 {
			s.BufferSize = 1000
		}
		if s.Tag == "" {
			s.Tag = s.Type
		}
		switch s.Type {
		case "stdin":
			if s.Format == "" {
				s.Format = "json"
			}
		case "http", "tcp":
			if s.Host == "" {
				s.Host = "0.0.0.0"
			}
		}
		if s.Type == "http" && s.MaxBodySizeKB <= 0 {
			s.MaxBodySizeKB = 10 * 1024
		}
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// validateConfig is the single validation pass over the whole configuration
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := cfg.Scribe.Validate(); err != nil {
		return err
	}

	if err := validateBuffer(&cfg.Buffer); err != nil {
		return err
	}

	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources specified")
	}

	allPorts := make(map[int64]string)
	for i := range cfg.Sources {
		if err := validateSource(i, &cfg.Sources[i], allPorts); err != nil {
			return err
		}
	}

	for i := range cfg.Filters {
		if err := validateFilter(i, &cfg.Filters[i]); err != nil {
			return err
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics: invalid port: %d", cfg.Metrics.Port)
		}
		if existing, exists := allPorts[cfg.Metrics.Port]; exists {
			return fmt.Errorf("metrics: port %d already used by %s", cfg.Metrics.Port, existing)
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("metrics: path must start with /: %s", cfg.Metrics.Path)
		}
	}

	if cfg.StatusIntervalSeconds < 0 {
		return fmt.Errorf("status interval cannot be negative: %d", cfg.StatusIntervalSeconds)
	}

	return nil
}

func validateBuffer(b *BufferConfig) error {
	if b.ChunkLimitKB < 1 {
		return fmt.Errorf("buffer: chunk limit must be positive: %d", b.ChunkLimitKB)
	}
	if b.QueueLimit < 1 {
		return fmt.Errorf("buffer: queue limit must be positive: %d", b.QueueLimit)
	}
	if b.FlushIntervalSeconds < 1 {
		return fmt.Errorf("buffer: flush interval must be positive: %d", b.FlushIntervalSeconds)
	}
	if b.FlushWorkers < 1 {
		return fmt.Errorf("buffer: flush workers must be positive: %d", b.FlushWorkers)
	}
	if b.RetryWaitMs < 1 {
		return fmt.Errorf("buffer: retry wait must be positive: %d", b.RetryWaitMs)
	}
	if b.MaxRetryWaitSeconds < 1 {
		return fmt.Errorf("buffer: max retry wait must be positive: %d", b.MaxRetryWaitSeconds)
	}
	if b.RetryLimit < 1 {
		return fmt.Errorf("buffer: retry limit must be positive: %d", b.RetryLimit)
	}
	return nil
}

func validateSource(index int, s *SourceConfig, allPorts map[int64]string) error {
	if err := lconfig.NonEmpty(s.Type); err != nil {
		return fmt.Errorf("source[%d]: missing type", index)
	}

	switch s.Type {
	case "stdin":
		if s.Format != "json" && s.Format != "text" {
			return fmt.Errorf("source[%d]: stdin format must be 'json' or 'text': %s", index, s.Format)
		}

	case "http", "tcp":
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("source[%d]: invalid or missing %s port", index, s.Type)
		}
		if existing, exists := allPorts[s.Port]; exists {
			return fmt.Errorf("source[%d]: %s port %d already used by %s", index, s.Type, s.Port, existing)
		}
		allPorts[s.Port] = fmt.Sprintf("source[%d]", index)

	default:
		return fmt.Errorf("source[%d]: unknown source type '%s'", index, s.Type)
	}

	if s.RateLimit != nil {
		if s.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("source[%d]: rate limit requests_per_second must be positive", index)
		}
		if s.RateLimit.BurstSize < 1 {
			return fmt.Errorf("source[%d]: rate limit burst_size must be positive", index)
		}
	}

	return nil
}
