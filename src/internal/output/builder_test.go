// FILE: logscribe/src/internal/output/builder_test.go
package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	tag    string
	record map[string]any
}

func encodeChunk(t *testing.T, events ...event) []byte {
	t.Helper()

	enc := NewEncoder(NewTagRewriter("", "unknown"))
	var chunk []byte
	for _, ev := range events {
		data, err := enc.Encode(ev.tag, ev.record)
		require.NoError(t, err)
		chunk = append(chunk, data...)
	}
	return chunk
}

func TestBuilder_FieldRef(t *testing.T) {
	chunk := encodeChunk(t,
		event{"web", map[string]any{"message": "GET /", "status": 200}},
		event{"web", map[string]any{"msg": "wrong field"}},
		event{"db", map[string]any{"message": "slow query"}},
	)

	entries, skipped, err := NewBuilder("message", false, false).Build(chunk)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 2)

	assert.Equal(t, "web", entries[0].Category)
	assert.Equal(t, "GET /", string(entries[0].Message))
	assert.Equal(t, "db", entries[1].Category)
	assert.Equal(t, "slow query", string(entries[1].Message))
}

func TestBuilder_CustomFieldRef(t *testing.T) {
	chunk := encodeChunk(t, event{"a", map[string]any{"log": "line", "message": "ignored"}})

	entries, _, err := NewBuilder("log", false, false).Build(chunk)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "line", string(entries[0].Message))
}

func TestBuilder_AddNewline(t *testing.T) {
	chunk := encodeChunk(t, event{"a", map[string]any{"message": "hello"}})

	entries, _, err := NewBuilder("message", false, true).Build(chunk)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello\n", string(entries[0].Message))
}

func TestBuilder_FormatToJSON(t *testing.T) {
	chunk := encodeChunk(t,
		event{"a", map[string]any{"message": "hi", "level": "info", "n": 3}},
		event{"b", map[string]any{"no_message": true}},
	)

	entries, skipped, err := NewBuilder("message", true, true).Build(chunk)
	require.NoError(t, err)
	assert.Zero(t, skipped, "JSON mode ships every record")
	require.Len(t, entries, 2)

	assert.Equal(t, `{"level":"info","message":"hi","n":3}`+"\n", string(entries[0].Message))
	assert.Equal(t, `{"no_message":true}`+"\n", string(entries[1].Message))
}

func TestBuilder_JSONKeepsMarkup(t *testing.T) {
	chunk := encodeChunk(t,
		event{"web", map[string]any{"message": "<b>a & b</b>"}},
	)

	entries, _, err := NewBuilder("message", true, false).Build(chunk)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, `{"message":"<b>a & b</b>"}`, string(entries[0].Message))

	nested := encodeChunk(t,
		event{"web", map[string]any{"message": map[string]any{"html": "<p>"}}},
	)
	entries, _, err = NewBuilder("message", false, false).Build(nested)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, `{"html":"<p>"}`, string(entries[0].Message))
}

func TestBuilder_MessageValueTypes(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "String", value: "text", expected: "text"},
		{name: "Integer", value: 42, expected: "42"},
		{name: "Negative", value: -7, expected: "-7"},
		{name: "Float", value: 1.5, expected: "1.5"},
		{name: "WholeFloat", value: 503.0, expected: "503"},
		{name: "Bool", value: true, expected: "true"},
		{name: "Nil", value: nil, expected: ""},
		{name: "Map", value: map[string]any{"user": "bob", "id": 1}, expected: `{"id":1,"user":"bob"}`},
		{name: "Slice", value: []any{"a", 2}, expected: `["a",2]`},
		{name: "Bytes", value: []byte{0x01, 0x02}, expected: "\x01\x02"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chunk := encodeChunk(t, event{"t", map[string]any{"message": tc.value}})

			entries, skipped, err := NewBuilder("message", false, false).Build(chunk)
			require.NoError(t, err)
			assert.Zero(t, skipped)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.expected, string(entries[0].Message))
		})
	}
}

func TestBuilder_EmptyChunk(t *testing.T) {
	entries, skipped, err := NewBuilder("message", false, false).Build(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, skipped)
}

func TestBuilder_CorruptChunk(t *testing.T) {
	good := encodeChunk(t, event{"a", map[string]any{"message": "ok"}})

	testCases := []struct {
		name  string
		chunk []byte
	}{
		{name: "Truncated", chunk: good[:len(good)-2]},
		{name: "TrailingGarbage", chunk: append(append([]byte{}, good...), 0xc1)},
		{name: "WrongArity", chunk: []byte{0x93, 0xa1, 'a', 0x80, 0xc0}},
		{name: "NotAnArray", chunk: []byte{0xa1, 'x'}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := NewBuilder("message", false, false).Build(tc.chunk)
			require.Error(t, err)

			var chunkErr *ChunkError
			require.True(t, errors.As(err, &chunkErr))
			assert.True(t, chunkErr.Unrecoverable())
		})
	}
}
