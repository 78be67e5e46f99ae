// FILE: logscribe/src/internal/source/source_test.go
package source

import (
	"testing"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNew(t *testing.T) {
	logger := newTestLogger()

	for _, kind := range []string{"stdin", "http", "tcp"} {
		src, err := New(config.SourceConfig{Type: kind, Tag: kind, Port: 24224}, logger)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, src.GetStats().Type)
	}

	_, err := New(config.SourceConfig{Type: "file"}, logger)
	assert.Error(t, err)
}

func TestMakeEvent(t *testing.T) {
	t.Run("DefaultTag", func(t *testing.T) {
		ev := makeEvent("app", "", map[string]any{"tag": "other"})
		assert.Equal(t, "app", ev.Tag)
		assert.Equal(t, "other", ev.Record["tag"])
		assert.False(t, ev.Time.IsZero())
	})

	t.Run("TagFieldExtracted", func(t *testing.T) {
		ev := makeEvent("app", "tag", map[string]any{"tag": "web.access", "message": "x"})
		assert.Equal(t, "web.access", ev.Tag)
		assert.NotContains(t, ev.Record, "tag")
		assert.Equal(t, "x", ev.Record["message"])
	})

	t.Run("TagFieldNotString", func(t *testing.T) {
		ev := makeEvent("app", "tag", map[string]any{"tag": 42.0})
		assert.Equal(t, "app", ev.Tag)
		assert.Equal(t, 42.0, ev.Record["tag"])
	})
}

func TestPublisher(t *testing.T) {
	var p publisher
	p.setup("test", 1)
	ch := p.Subscribe()

	assert.True(t, p.publish(core.Event{Tag: "a"}))
	assert.False(t, p.publish(core.Event{Tag: "b"}), "full subscriber drops")

	stats := p.stats(nil)
	assert.Equal(t, uint64(2), stats.TotalEntries)
	assert.Equal(t, uint64(1), stats.DroppedEntries)

	p.closeSubscribers()
	p.closeSubscribers()
	assert.False(t, p.publish(core.Event{Tag: "c"}), "closed publisher discards")

	ev, ok := <-ch
	assert.True(t, ok)
	assert.Equal(t, "a", ev.Tag)
	_, ok = <-ch
	assert.False(t, ok)
}
