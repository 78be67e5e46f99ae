// FILE: logscribe/src/internal/output/output_test.go
package output

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"
	"logscribe/src/internal/scribe"
	"logscribe/src/internal/scribe/scribetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scribeConfig(server *scribetest.Server) config.ScribeConfig {
	cfg := config.DefaultScribeConfig()
	cfg.Host = server.Host()
	cfg.Port = server.Port()
	cfg.Timeout = 2
	return cfg
}

func formatAll(t *testing.T, o *ScribeOutput, events ...core.Event) []byte {
	t.Helper()

	var chunk []byte
	for _, ev := range events {
		data, err := o.Format(ev)
		require.NoError(t, err)
		chunk = append(chunk, data...)
	}
	return chunk
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultScribeConfig()
	cfg.Port = 0

	_, err := New(cfg, newTestLogger())
	assert.Error(t, err)
}

func TestScribeOutput_Write(t *testing.T) {
	server, err := scribetest.NewServer(nil)
	require.NoError(t, err)
	defer server.Close()

	cfg := scribeConfig(server)
	cfg.RemovePrefix = "app"
	cfg.AddNewline = true

	o, err := New(cfg, newTestLogger())
	require.NoError(t, err)

	chunk := formatAll(t, o,
		core.Event{Tag: "app.access", Record: map[string]any{"message": "GET /"}},
		core.Event{Tag: "app", Record: map[string]any{"message": "boot"}},
		core.Event{Tag: "other", Record: map[string]any{"level": "info"}},
		core.Event{Tag: "db.slow", Record: map[string]any{"message": 12.5}},
	)

	require.NoError(t, o.Write(context.Background(), chunk))

	batches := server.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, []*scribe.LogEntry{
		{Category: "access", Message: []byte("GET /\n")},
		{Category: "unknown", Message: []byte("boot\n")},
		{Category: "db.slow", Message: []byte("12.5\n")},
	}, batches[0])

	stats := o.GetStats()
	assert.Equal(t, uint64(3), stats["entries_shipped"])
	assert.Equal(t, uint64(1), stats["entries_skipped"])
	assert.Equal(t, uint64(1), stats["total_flushes"])
	assert.Equal(t, uint64(0), stats["failed_flushes"])
}

func TestScribeOutput_WriteAllSkipped(t *testing.T) {
	server, err := scribetest.NewServer(nil)
	require.NoError(t, err)
	defer server.Close()

	o, err := New(scribeConfig(server), newTestLogger())
	require.NoError(t, err)

	chunk := formatAll(t, o, core.Event{Tag: "t", Record: map[string]any{"other": 1}})
	require.NoError(t, o.Write(context.Background(), chunk))

	// The connection is still opened and an empty batch is sent
	batches := server.Batches()
	require.Len(t, batches, 1)
	assert.Empty(t, batches[0])
}

func TestScribeOutput_WriteErrors(t *testing.T) {
	t.Run("Unreachable", func(t *testing.T) {
		host, port, err := net.SplitHostPort(refusedAddr(t))
		require.NoError(t, err)
		portNum, err := strconv.ParseInt(port, 10, 64)
		require.NoError(t, err)

		cfg := config.DefaultScribeConfig()
		cfg.Host = host
		cfg.Port = portNum
		cfg.Timeout = 1

		dialer := &countingDialer{}
		o, err := newScribeOutput(cfg, newTestLogger(), dialer)
		require.NoError(t, err)

		err = o.Write(context.Background(), nil)
		var connErr *ConnectError
		assert.True(t, errors.As(err, &connErr))
		assert.Equal(t, uint64(1), o.GetStats()["failed_flushes"])
	})

	t.Run("CorruptChunk", func(t *testing.T) {
		server, err := scribetest.NewServer(nil)
		require.NoError(t, err)
		defer server.Close()

		dialer := &countingDialer{}
		o, err := newScribeOutput(scribeConfig(server), newTestLogger(), dialer)
		require.NoError(t, err)

		err = o.Write(context.Background(), []byte{0xc1})
		var chunkErr *ChunkError
		require.True(t, errors.As(err, &chunkErr))
		assert.Equal(t, int32(1), dialer.closes.Load())
		assert.Zero(t, server.Calls())
	})
}

func TestScribeOutput_FormatEncodingError(t *testing.T) {
	o, err := New(config.DefaultScribeConfig(), newTestLogger())
	require.NoError(t, err)

	_, err = o.Format(core.Event{Tag: "t", Record: map[string]any{"f": func() {}}})
	var encErr *EncodingError
	assert.True(t, errors.As(err, &encErr))
}
