// FILE: logscribe/src/internal/filter/filter_test.go
package filter

import (
	"testing"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func event(tag string, record map[string]any) core.Event {
	return core.Event{Tag: tag, Record: record}
}

func TestNewFilter(t *testing.T) {
	logger := newTestLogger()

	t.Run("SuccessWithDefaults", func(t *testing.T) {
		cfg := config.FilterConfig{Patterns: []string{"test"}}
		f, err := NewFilter(cfg, logger)
		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, config.FilterTypeInclude, f.config.Type)
		assert.Equal(t, config.FilterLogicOr, f.config.Logic)
	})

	t.Run("SuccessWithCustomConfig", func(t *testing.T) {
		cfg := config.FilterConfig{
			Type:     config.FilterTypeExclude,
			Logic:    config.FilterLogicAnd,
			Patterns: []string{"test", "pattern"},
			Field:    "level",
		}
		f, err := NewFilter(cfg, logger)
		assert.NoError(t, err)
		assert.Equal(t, config.FilterTypeExclude, f.config.Type)
		assert.Equal(t, "level", f.config.Field)
		assert.Len(t, f.patterns, 2)
	})

	t.Run("ErrorInvalidRegex", func(t *testing.T) {
		cfg := config.FilterConfig{Patterns: []string{"["}}
		f, err := NewFilter(cfg, logger)
		assert.Error(t, err)
		assert.Nil(t, f)
		assert.Contains(t, err.Error(), "invalid regex pattern")
	})
}

func TestFilter_Apply(t *testing.T) {
	logger := newTestLogger()

	testCases := []struct {
		name     string
		cfg      config.FilterConfig
		ev       core.Event
		expected bool
	}{
		{
			name:     "IncludeOR_TagMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{`^app\.`, `^web\.`}},
			ev:       event("app.access", nil),
			expected: true,
		},
		{
			name:     "IncludeOR_TagNoMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{`^app\.`, `^web\.`}},
			ev:       event("db.slow", nil),
			expected: false,
		},
		{
			name:     "IncludeAND_MatchAll",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicAnd, Patterns: []string{"app", "access"}},
			ev:       event("app.access", nil),
			expected: true,
		},
		{
			name:     "IncludeAND_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicAnd, Patterns: []string{"app", "error"}},
			ev:       event("app.access", nil),
			expected: false,
		},
		{
			name:     "ExcludeOR_FieldMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Patterns: []string{"debug", "trace"}, Field: "level"},
			ev:       event("app", map[string]any{"level": "debug"}),
			expected: false,
		},
		{
			name:     "ExcludeOR_FieldNoMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Patterns: []string{"debug", "trace"}, Field: "level"},
			ev:       event("app", map[string]any{"level": "error"}),
			expected: true,
		},
		{
			name:     "FieldMissingIsEmpty",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{"^$"}, Field: "level"},
			ev:       event("app", map[string]any{"message": "hi"}),
			expected: true,
		},
		{
			name:     "FieldNumber",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{"^5\\d\\d$"}, Field: "status"},
			ev:       event("web", map[string]any{"status": float64(503)}),
			expected: true,
		},
		{
			name:     "FieldNestedAsJSON",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{`"user":"bob"`}, Field: "ctx"},
			ev:       event("web", map[string]any{"ctx": map[string]any{"user": "bob"}}),
			expected: true,
		},
		{
			name:     "NoPatterns",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{}},
			ev:       event("anything", nil),
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewFilter(tc.cfg, logger)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, f.Apply(tc.ev))
		})
	}
}

func TestFilter_GetStats(t *testing.T) {
	f, err := NewFilter(config.FilterConfig{Type: config.FilterTypeExclude, Patterns: []string{"noise"}}, newTestLogger())
	assert.NoError(t, err)

	f.Apply(event("noise.x", nil))
	f.Apply(event("app.x", nil))

	stats := f.GetStats()
	assert.Equal(t, uint64(2), stats["total_processed"])
	assert.Equal(t, uint64(1), stats["total_matched"])
	assert.Equal(t, uint64(1), stats["total_dropped"])
}
