// FILE: logscribe/src/internal/output/errors.go
package output

import "fmt"

// EncodingError reports a record that could not be serialized into the buffer
type EncodingError struct {
	Tag string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode event with tag %q: %v", e.Tag, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// ConnectError reports a transport that could not be established.
// Nothing is left open when it is returned.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to scribe %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// RPCError reports a failed Log call on an established connection.
// The connection has been closed when it is returned.
type RPCError struct {
	Addr    string
	Entries int
	Err     error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("scribe Log call to %s with %d entries: %v", e.Addr, e.Entries, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// ChunkError reports a chunk whose content cannot be turned into entries.
// Retrying cannot fix it.
type ChunkError struct {
	Offset int
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("malformed chunk at offset %d: %v", e.Offset, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Unrecoverable tells the buffer to drop the chunk instead of retrying it
func (e *ChunkError) Unrecoverable() bool { return true }
