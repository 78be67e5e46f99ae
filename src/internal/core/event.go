// FILE: logscribe/src/internal/core/event.go
package core

import "time"

// Event is a single tagged record flowing from a source to the output.
// Sources build it once; nothing downstream mutates Record.
type Event struct {
	Tag    string
	Time   time.Time
	Record map[string]any
}

// MessageField is the record key used when a source wraps a plain text line.
const MessageField = "message"
