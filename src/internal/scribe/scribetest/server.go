// FILE: logscribe/src/internal/scribe/scribetest/server.go
package scribetest

import (
	"context"
	"errors"
	"net"
	"sync"

	"logscribe/src/internal/scribe"

	"github.com/apache/thrift/lib/go/thrift"
)

// ErrHangUp makes the server drop the connection without replying
var ErrHangUp = errors.New("scribetest: hang up")

// HandlerFunc decides the reply to one Log call
type HandlerFunc func(entries []*scribe.LogEntry) (scribe.ResultCode, error)

// Accept answers every call with OK
func Accept(entries []*scribe.LogEntry) (scribe.ResultCode, error) {
	return scribe.ResultCodeOK, nil
}

// Server is an in-process Scribe collector listening on loopback
type Server struct {
	listener net.Listener
	handler  HandlerFunc
	conf     *thrift.TConfiguration

	mu          sync.Mutex
	batches     [][]*scribe.LogEntry
	conns       map[net.Conn]struct{}
	connections int
	wg          sync.WaitGroup
}

// NewServer starts a collector on 127.0.0.1 with a random port
func NewServer(handler HandlerFunc) (*Server, error) {
	if handler == nil {
		handler = Accept
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &Server{
		listener: listener,
		handler:  handler,
		conf:     scribe.Configuration(0),
		conns:    make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Host() string {
	return s.listener.Addr().(*net.TCPAddr).IP.String()
}

func (s *Server) Port() int64 {
	return int64(s.listener.Addr().(*net.TCPAddr).Port)
}

// Batches returns every batch received so far, in arrival order
func (s *Server) Batches() [][]*scribe.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]*scribe.LogEntry, len(s.batches))
	copy(out, s.batches)
	return out
}

// Calls returns the number of Log calls received
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

// Connections returns the number of accepted connections
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// Close stops accepting, drops open connections and waits for handlers
func (s *Server) Close() {
	_ = s.listener.Close()

	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.connections++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	ctx := context.Background()
	transport, prot := scribe.Wrap(conn, s.conf)
	defer transport.Close()

	for {
		method, _, seqID, err := prot.ReadMessageBegin(ctx)
		if err != nil {
			return
		}

		var args scribe.LogArgs
		if err := args.Read(ctx, prot); err != nil {
			return
		}
		if err := prot.ReadMessageEnd(ctx); err != nil {
			return
		}

		if method != scribe.MethodLog {
			exc := thrift.NewTApplicationException(thrift.UNKNOWN_METHOD, "Unknown function "+method)
			if err := s.reply(ctx, prot, method, thrift.EXCEPTION, seqID, exc); err != nil {
				return
			}
			continue
		}

		s.mu.Lock()
		s.batches = append(s.batches, args.Messages)
		s.mu.Unlock()

		code, err := s.handler(args.Messages)
		if errors.Is(err, ErrHangUp) {
			return
		}

		if err != nil {
			exc := thrift.NewTApplicationException(thrift.INTERNAL_ERROR, err.Error())
			if err := s.reply(ctx, prot, method, thrift.EXCEPTION, seqID, exc); err != nil {
				return
			}
			continue
		}

		result := &scribe.LogResult{Success: &code}
		if err := s.reply(ctx, prot, method, thrift.REPLY, seqID, result); err != nil {
			return
		}
	}
}

func (s *Server) reply(ctx context.Context, prot thrift.TProtocol, method string,
	messageType thrift.TMessageType, seqID int32, body thrift.TStruct) error {
	if err := prot.WriteMessageBegin(ctx, method, messageType, seqID); err != nil {
		return err
	}
	if err := body.Write(ctx, prot); err != nil {
		return err
	}
	if err := prot.WriteMessageEnd(ctx); err != nil {
		return err
	}
	return prot.Flush(ctx)
}
