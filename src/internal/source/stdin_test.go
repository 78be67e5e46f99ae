// FILE: logscribe/src/internal/source/stdin_test.go
package source

import (
	"strings"
	"testing"
	"time"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdinSource_ParseLine(t *testing.T) {
	logger := newTestLogger()

	t.Run("JSONObject", func(t *testing.T) {
		s := newStdinSource(config.SourceConfig{Tag: "in", Format: "json"}, nil, logger)
		ev := s.parseLine([]byte(`{"message":"hello","n":1}`))
		assert.Equal(t, "in", ev.Tag)
		assert.Equal(t, "hello", ev.Record["message"])
		assert.Equal(t, 1.0, ev.Record["n"])
	})

	t.Run("JSONFallbackToText", func(t *testing.T) {
		s := newStdinSource(config.SourceConfig{Tag: "in", Format: "json"}, nil, logger)
		ev := s.parseLine([]byte(`not json`))
		assert.Equal(t, map[string]any{core.MessageField: "not json"}, ev.Record)
	})

	t.Run("JSONArrayIsText", func(t *testing.T) {
		s := newStdinSource(config.SourceConfig{Tag: "in", Format: "json"}, nil, logger)
		ev := s.parseLine([]byte(`[1,2]`))
		assert.Equal(t, "[1,2]", ev.Record[core.MessageField])
	})

	t.Run("TextFormat", func(t *testing.T) {
		s := newStdinSource(config.SourceConfig{Tag: "in", Format: "text"}, nil, logger)
		ev := s.parseLine([]byte(`{"message":"hello"}`))
		assert.Equal(t, `{"message":"hello"}`, ev.Record[core.MessageField])
	})

	t.Run("TagField", func(t *testing.T) {
		s := newStdinSource(config.SourceConfig{Tag: "in", Format: "json", TagField: "tag"}, nil, logger)
		ev := s.parseLine([]byte(`{"tag":"app.db","message":"slow"}`))
		assert.Equal(t, "app.db", ev.Tag)
		assert.NotContains(t, ev.Record, "tag")
	})
}

func TestStdinSource_ReadLoop(t *testing.T) {
	input := strings.NewReader("{\"message\":\"one\"}\n\nplain two\n")
	s := newStdinSource(config.SourceConfig{Tag: "in", Format: "json", BufferSize: 10}, input, newTestLogger())
	ch := s.Subscribe()

	require.NoError(t, s.Start())

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-ch:
			got = append(got, ev.Record[core.MessageField].(string))
		case <-timeout:
			t.Fatal("timed out waiting for events")
		}
	}
	s.wg.Wait()
	s.Stop()

	assert.Equal(t, []string{"one", "plain two"}, got)
	assert.Equal(t, uint64(2), s.GetStats().TotalEntries)
}
