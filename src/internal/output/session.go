// FILE: logscribe/src/internal/output/session.go
package output

import (
	"context"
	"fmt"
	"net"
	"time"

	"logscribe/src/internal/scribe"

	"github.com/apache/thrift/lib/go/thrift"
)

// Dialer opens the TCP connection of one flush; *net.Dialer satisfies it
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Logger is the only logging the session needs
type Logger interface {
	Debug(args ...any)
}

// BuildFunc produces the entries of a flush once the transport is open
type BuildFunc func() ([]*scribe.LogEntry, error)

// Session ships one batch per call over a connection it opens and closes
// itself. It holds no per-call state, so concurrent Ship calls are
// independent.
type Session struct {
	addr            string
	timeout         time.Duration
	dialer          Dialer
	conf            *thrift.TConfiguration
	retryOnTryLater bool
	logger          Logger
}

// NewSession creates a session for addr. A nil dialer uses a net.Dialer.
// Every dial is bounded by timeout whatever the dialer.
func NewSession(addr string, timeout time.Duration, dialer Dialer, retryOnTryLater bool, logger Logger) *Session {
	if dialer == nil {
		dialer = &net.Dialer{Timeout: timeout}
	}
	return &Session{
		addr:            addr,
		timeout:         timeout,
		dialer:          dialer,
		conf:            scribe.Configuration(timeout),
		retryOnTryLater: retryOnTryLater,
		logger:          logger,
	}
}

// Send ships an already built batch
func (s *Session) Send(ctx context.Context, entries []*scribe.LogEntry) error {
	_, err := s.Ship(ctx, func() ([]*scribe.LogEntry, error) {
		return entries, nil
	})
	return err
}

// Ship connects, builds the batch, issues one Log call and closes the
// connection on every path. It returns the number of entries sent.
func (s *Session) Ship(ctx context.Context, build BuildFunc) (int, error) {
	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	conn, err := s.dialer.DialContext(dialCtx, "tcp", s.addr)
	cancel()
	if err != nil {
		return 0, &ConnectError{Addr: s.addr, Err: err}
	}

	transport, prot := scribe.Wrap(conn, s.conf)
	defer transport.Close()

	entries, err := build()
	if err != nil {
		return 0, err
	}

	s.logger.Debug("msg", "Writing entries to scribe",
		"component", "scribe_session",
		"address", s.addr,
		"entries", len(entries))

	client := scribe.NewClient(prot)
	code, err := client.Log(ctx, entries)
	if err != nil {
		return 0, &RPCError{Addr: s.addr, Entries: len(entries), Err: err}
	}

	if code == scribe.ResultCodeTryLater && s.retryOnTryLater {
		return 0, &RPCError{
			Addr:    s.addr,
			Entries: len(entries),
			Err:     fmt.Errorf("collector replied %s", code),
		}
	}

	return len(entries), nil
}
