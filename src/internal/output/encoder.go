// FILE: logscribe/src/internal/output/encoder.go
package output

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoder turns one event into the self-delimiting form stored in chunks:
// a msgpack array of [tag, record].
type Encoder struct {
	rewriter *TagRewriter
}

func NewEncoder(rewriter *TagRewriter) *Encoder {
	return &Encoder{rewriter: rewriter}
}

// Encode serializes the event with its tag already rewritten.
// The returned slice is owned by the caller.
func (e *Encoder) Encode(tag string, record map[string]any) ([]byte, error) {
	tag = e.rewriter.Rewrite(tag)

	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	enc.Reset(&buf)
	enc.SetSortMapKeys(true)

	if err := enc.EncodeArrayLen(2); err != nil {
		return nil, &EncodingError{Tag: tag, Err: err}
	}
	if err := enc.EncodeString(tag); err != nil {
		return nil, &EncodingError{Tag: tag, Err: err}
	}
	if err := enc.Encode(record); err != nil {
		return nil, &EncodingError{Tag: tag, Err: err}
	}

	return buf.Bytes(), nil
}
