// FILE: logscribe/src/internal/source/tcp.go
package source

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logscribe/src/internal/config"
	"logscribe/src/internal/limit"
	"logscribe/src/internal/metrics"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

const (
	maxClientBufferSize = 10 * 1024 * 1024 // 10MB max per client
	maxLineLength       = 1 * 1024 * 1024  // 1MB max per line
)

// TCPSource receives newline-delimited JSON events over TCP
type TCPSource struct {
	publisher
	host        string
	port        int64
	tag         string
	tagField    string
	server      *tcpSourceServer
	engine      *gnet.Engine
	engineMu    sync.Mutex
	rateLimiter *limit.RateLimiter
	wg          sync.WaitGroup
	logger      *log.Logger

	invalidEntries atomic.Uint64
	limitedConns   atomic.Uint64
	activeConns    atomic.Int64
}

// NewTCPSource creates a new TCP server source
func NewTCPSource(cfg config.SourceConfig, logger *log.Logger) *TCPSource {
	t := &TCPSource{
		host:     cfg.Host,
		port:     cfg.Port,
		tag:      cfg.Tag,
		tagField: cfg.TagField,
		logger:   logger,
	}
	t.setup("tcp", cfg.BufferSize)

	if cfg.RateLimit != nil {
		t.rateLimiter = limit.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize, 0)
	}

	return t
}

func (t *TCPSource) Start() error {
	t.server = &tcpSourceServer{
		source:  t,
		clients: make(map[gnet.Conn]*tcpClient),
	}

	addr := fmt.Sprintf("tcp://%s:%d", t.host, t.port)
	gnetLogger := compat.NewGnetAdapter(t.logger)

	errChan := make(chan error, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.logger.Info("msg", "TCP source server starting",
			"component", "tcp_source",
			"port", t.port)

		err := gnet.Run(t.server, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
		if err != nil {
			t.logger.Error("msg", "TCP source server failed",
				"component", "tcp_source",
				"port", t.port,
				"error", err)
		}
		errChan <- err
	}()

	// Wait briefly for server to start or fail
	select {
	case err := <-errChan:
		t.wg.Wait()
		if err == nil {
			err = fmt.Errorf("tcp source on port %d exited during startup", t.port)
		}
		return err
	case <-time.After(100 * time.Millisecond):
		t.logger.Info("msg", "TCP source started",
			"component", "tcp_source",
			"port", t.port,
			"default_tag", t.tag)
		return nil
	}
}

func (t *TCPSource) Stop() {
	t.logger.Info("msg", "Stopping TCP source", "component", "tcp_source")

	t.engineMu.Lock()
	engine := t.engine
	t.engineMu.Unlock()

	if engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := engine.Stop(ctx); err != nil {
			t.logger.Warn("msg", "TCP engine stop error",
				"component", "tcp_source",
				"error", err)
		}
	}

	if t.rateLimiter != nil {
		t.rateLimiter.Stop()
	}

	t.wg.Wait()
	t.closeSubscribers()

	t.logger.Info("msg", "TCP source stopped", "component", "tcp_source")
}

func (t *TCPSource) GetStats() SourceStats {
	var rateLimitStats map[string]any
	if t.rateLimiter != nil {
		rateLimitStats = t.rateLimiter.GetStats()
	}

	return t.stats(map[string]any{
		"port":               t.port,
		"default_tag":        t.tag,
		"active_connections": t.activeConns.Load(),
		"invalid_entries":    t.invalidEntries.Load(),
		"limited_conns":      t.limitedConns.Load(),
		"rate_limit":         rateLimitStats,
	})
}

// handleLine decodes one line; invalid JSON is counted and skipped
func (t *TCPSource) handleLine(line []byte) {
	record, err := decodeObject(line)
	if err != nil {
		t.invalidEntries.Add(1)
		metrics.EventsDropped.WithLabelValues("invalid").Inc()
		t.logger.Debug("msg", "Invalid JSON event",
			"component", "tcp_source",
			"error", err,
			"data", string(line))
		return
	}

	if !t.publish(makeEvent(t.tag, t.tagField, record)) {
		t.logger.Debug("msg", "Dropped event - subscriber buffer full",
			"component", "tcp_source")
	}
}

// tcpClient holds the partial line state of one connection
type tcpClient struct {
	buffer        bytes.Buffer
	maxBufferSeen int
}

// tcpSourceServer handles gnet events
type tcpSourceServer struct {
	gnet.BuiltinEventEngine
	source  *TCPSource
	clients map[gnet.Conn]*tcpClient
	mu      sync.RWMutex
}

func (s *tcpSourceServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.source.engineMu.Lock()
	s.source.engine = &eng
	s.source.engineMu.Unlock()

	s.source.logger.Debug("msg", "TCP source server booted",
		"component", "tcp_source",
		"port", s.source.port)
	return gnet.None
}

func (s *tcpSourceServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	remoteAddr := c.RemoteAddr().String()

	if s.source.rateLimiter != nil && !s.source.rateLimiter.Allow(remoteAddr) {
		s.source.limitedConns.Add(1)
		s.source.logger.Warn("msg", "TCP connection rate limited",
			"component", "tcp_source",
			"remote_addr", remoteAddr)
		return nil, gnet.Close
	}

	s.mu.Lock()
	s.clients[c] = &tcpClient{}
	s.mu.Unlock()

	newCount := s.source.activeConns.Add(1)
	s.source.logger.Debug("msg", "TCP connection opened",
		"component", "tcp_source",
		"remote_addr", remoteAddr,
		"active_connections", newCount)
	return nil, gnet.None
}

func (s *tcpSourceServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	client, exists := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	if !exists {
		return gnet.None
	}

	// A trailing line without newline is still an event
	if rest := bytes.TrimSpace(client.buffer.Bytes()); len(rest) > 0 {
		s.source.handleLine(rest)
	}

	newCount := s.source.activeConns.Add(-1)
	s.source.logger.Debug("msg", "TCP connection closed",
		"component", "tcp_source",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount,
		"max_buffer_seen", client.maxBufferSeen,
		"error", err)
	return gnet.None
}

func (s *tcpSourceServer) OnTraffic(c gnet.Conn) gnet.Action {
	s.mu.RLock()
	client, exists := s.clients[c]
	s.mu.RUnlock()

	if !exists {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		s.source.logger.Error("msg", "Error reading from connection",
			"component", "tcp_source",
			"error", err)
		return gnet.Close
	}

	if client.buffer.Len()+len(data) > maxClientBufferSize {
		s.source.logger.Warn("msg", "Client buffer limit exceeded, closing connection",
			"component", "tcp_source",
			"remote_addr", c.RemoteAddr().String(),
			"buffer_size", client.buffer.Len(),
			"incoming_size", len(data),
			"limit", maxClientBufferSize)
		s.source.invalidEntries.Add(1)
		client.buffer.Reset()
		return gnet.Close
	}

	client.buffer.Write(data)
	if client.buffer.Len() > client.maxBufferSeen {
		client.maxBufferSeen = client.buffer.Len()
	}

	if client.buffer.Len() > maxLineLength && bytes.IndexByte(client.buffer.Bytes(), '\n') < 0 {
		s.source.logger.Warn("msg", "Line too long without newline",
			"component", "tcp_source",
			"remote_addr", c.RemoteAddr().String(),
			"buffer_size", client.buffer.Len())
		s.source.invalidEntries.Add(1)
		client.buffer.Reset()
		return gnet.Close
	}

	s.drain(client)
	return gnet.None
}

// drain handles every complete line, leaving a partial tail buffered
func (s *tcpSourceServer) drain(client *tcpClient) {
	for {
		idx := bytes.IndexByte(client.buffer.Bytes(), '\n')
		if idx < 0 {
			return
		}
		line := bytes.TrimSpace(client.buffer.Next(idx + 1))
		if len(line) == 0 {
			continue
		}
		s.source.handleLine(line)
	}
}
