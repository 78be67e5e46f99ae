// FILE: logscribe/src/internal/config/scribe.go
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	lconfig "github.com/lixenwraith/config"
)

// ScribeConfig is the output's view of the remote collector and of the
// record-to-entry transform. Values are copied into the output on
// construction and never change afterwards.
type ScribeConfig struct {
	Host string `toml:"host"`
	Port int64  `toml:"port"`

	// Connect and socket I/O timeout in seconds
	Timeout int64 `toml:"timeout"`

	// Record field used as the message body
	FieldRef string `toml:"field_ref"`

	// Tag prefix stripped at encode time ("" disables)
	RemovePrefix string `toml:"remove_prefix"`

	// Category used when stripping leaves nothing
	DefaultCategory string `toml:"default_category"`

	AddNewline bool `toml:"add_newline"`

	// Ship the whole record as JSON instead of field_ref
	FormatToJSON bool `toml:"format_to_json"`

	// Treat a TRY_LATER reply as a failed flush
	RetryOnTryLater bool `toml:"retry_on_try_later"`
}

// DefaultScribeConfig returns the documented option defaults
func DefaultScribeConfig() ScribeConfig {
	return ScribeConfig{
		Host:            "localhost",
		Port:            1463,
		Timeout:         30,
		FieldRef:        "message",
		RemovePrefix:    "",
		DefaultCategory: "unknown",
		AddNewline:      false,
		FormatToJSON:    false,
		RetryOnTryLater: false,
	}
}

// Address returns host:port of the collector
func (c ScribeConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.FormatInt(c.Port, 10))
}

// TimeoutDuration returns the timeout as a duration
func (c ScribeConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Validate checks the options the output cannot work without
func (c ScribeConfig) Validate() error {
	if err := lconfig.NonEmpty(c.Host); err != nil {
		return fmt.Errorf("scribe: host: %w", err)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("scribe: invalid port: %d", c.Port)
	}
	if c.Timeout < 1 {
		return fmt.Errorf("scribe: timeout must be positive: %d", c.Timeout)
	}
	if !c.FormatToJSON {
		if err := lconfig.NonEmpty(c.FieldRef); err != nil {
			return fmt.Errorf("scribe: field_ref: %w", err)
		}
	}
	if err := lconfig.NonEmpty(c.DefaultCategory); err != nil {
		return fmt.Errorf("scribe: default_category: %w", err)
	}
	return nil
}
