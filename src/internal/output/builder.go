// FILE: logscribe/src/internal/output/builder.go
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"logscribe/src/internal/scribe"

	"github.com/vmihailenco/msgpack/v5"
)

// Builder decodes a chunk and turns its records into wire entries
type Builder struct {
	fieldRef     string
	formatToJSON bool
	addNewline   bool
}

func NewBuilder(fieldRef string, formatToJSON, addNewline bool) *Builder {
	return &Builder{
		fieldRef:     fieldRef,
		formatToJSON: formatToJSON,
		addNewline:   addNewline,
	}
}

// Build returns one entry per shippable record, in chunk order, plus the
// number of records skipped for lacking the message field.
func (b *Builder) Build(chunk []byte) ([]*scribe.LogEntry, int, error) {
	entries := make([]*scribe.LogEntry, 0)
	skipped := 0

	err := Decode(chunk, func(tag string, record map[string]any) error {
		message, ok, err := b.message(record)
		if err != nil {
			return err
		}
		if !ok {
			skipped++
			return nil
		}

		entries = append(entries, &scribe.LogEntry{
			Category: tag,
			Message:  message,
		})
		return nil
	})
	if err != nil {
		return nil, skipped, err
	}

	return entries, skipped, nil
}

// message computes the body; ok is false when the record is not shippable
func (b *Builder) message(record map[string]any) ([]byte, bool, error) {
	var value any
	if b.formatToJSON {
		value = record
	} else {
		v, exists := record[b.fieldRef]
		if !exists {
			return nil, false, nil
		}
		value = v
	}

	text, err := messageText(value)
	if err != nil {
		return nil, false, err
	}

	if b.addNewline {
		text = append(text, '\n')
	}
	return text, true, nil
}

// messageText renders mappings and sequences as JSON and scalars as text
func messageText(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return []byte{}, nil
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	case bool:
		return strconv.AppendBool(nil, v), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case uint64:
		return strconv.AppendUint(nil, v, 10), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'f', -1, 32), nil
	case map[string]any, []any:
		data, err := encodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("render message as JSON: %w", err)
		}
		return data, nil
	default:
		// Other decoded scalars (time, ext types) use their default text form
		return []byte(fmt.Sprint(v)), nil
	}
}

// encodeJSON marshals v with <, > and & left as-is
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode walks a chunk and calls fn for every [tag, record] pair in order
func Decode(chunk []byte, fn func(tag string, record map[string]any) error) error {
	r := bytes.NewReader(chunk)
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)

	for r.Len() > 0 {
		offset := len(chunk) - r.Len()

		n, err := dec.DecodeArrayLen()
		if err != nil {
			return &ChunkError{Offset: offset, Err: err}
		}
		if n != 2 {
			return &ChunkError{Offset: offset, Err: fmt.Errorf("expected [tag, record], got array of %d", n)}
		}

		tag, err := dec.DecodeString()
		if err != nil {
			return &ChunkError{Offset: offset, Err: fmt.Errorf("tag: %w", err)}
		}

		record, err := dec.DecodeMap()
		if err != nil {
			return &ChunkError{Offset: offset, Err: fmt.Errorf("record: %w", err)}
		}

		if err := fn(tag, record); err != nil {
			return &ChunkError{Offset: offset, Err: err}
		}
	}

	return nil
}
