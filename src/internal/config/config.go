// FILE: logscribe/src/internal/config/config.go
package config

// Config is the complete, validated runtime configuration.
// It is resolved once at startup and treated as read-only afterwards.
type Config struct {
	// Suppress all console output and logging
	Quiet bool `toml:"quiet"`

	// Interval of the periodic status report (0 disables it)
	StatusIntervalSeconds int64 `toml:"status_interval_seconds"`

	Logging *LogConfig     `toml:"logging"`
	Scribe  ScribeConfig   `toml:"scribe"`
	Buffer  BufferConfig   `toml:"buffer"`
	Sources []SourceConfig `toml:"sources"`
	Filters []FilterConfig `toml:"filters"`
	Metrics MetricsConfig  `toml:"metrics"`
}

// BufferConfig controls chunking, flushing and retry of buffered events
type BufferConfig struct {
	// Maximum encoded size of one chunk
	ChunkLimitKB int64 `toml:"chunk_limit_kb"`

	// Maximum number of sealed chunks waiting for a flush worker
	QueueLimit int64 `toml:"queue_limit"`

	// Seal the current chunk at least this often
	FlushIntervalSeconds int64 `toml:"flush_interval_seconds"`

	// Number of concurrent flushes
	FlushWorkers int64 `toml:"flush_workers"`

	// First retry delay, doubled after each failed attempt
	RetryWaitMs int64 `toml:"retry_wait_ms"`

	// Upper bound of the retry delay
	MaxRetryWaitSeconds int64 `toml:"max_retry_wait_seconds"`

	// Attempts per chunk before it is discarded
	RetryLimit int64 `toml:"retry_limit"`
}

// SourceConfig describes one event input
type SourceConfig struct {
	// Source type: "stdin", "http", "tcp"
	Type string `toml:"type"`

	// Tag assigned to events that do not carry their own
	Tag string `toml:"tag"`

	// Listen address for network sources
	Host string `toml:"host"`
	Port int64  `toml:"port"`

	// stdin line format: "json" or "text"
	Format string `toml:"format"`

	// tcp: record field holding the event tag
	TagField string `toml:"tag_field"`

	// http: request body cap
	MaxBodySizeKB int64 `toml:"max_body_size_kb"`

	// Subscriber channel capacity
	BufferSize int64 `toml:"buffer_size"`

	RateLimit *RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig limits requests per remote client
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BurstSize         int64   `toml:"burst_size"`
}

// MetricsConfig controls the Prometheus exposition endpoint
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int64  `toml:"port"`
	Path    string `toml:"path"`
}

func defaults() *Config {
	return &Config{
		Quiet:                 false,
		StatusIntervalSeconds: 30,
		Logging:               DefaultLogConfig(),
		Scribe:                DefaultScribeConfig(),
		Buffer:                DefaultBufferConfig(),
		Sources: []SourceConfig{
			{Type: "stdin", Tag: "stdin", Format: "json", BufferSize: 1000},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Host:    "0.0.0.0",
			Port:    9464,
			Path:    "/metrics",
		},
	}
}

// DefaultBufferConfig mirrors the buffered output defaults: 1MB chunks,
// 60s flush interval, exponential retry capped at one minute.
func DefaultBufferConfig() BufferConfig {
	return BufferConfig{
		ChunkLimitKB:         1024,
		QueueLimit:           64,
		FlushIntervalSeconds: 60,
		FlushWorkers:         1,
		RetryWaitMs:          1000,
		MaxRetryWaitSeconds:  60,
		RetryLimit:           17,
	}
}
