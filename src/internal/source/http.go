// FILE: logscribe/src/internal/source/http.go
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"logscribe/src/internal/config"
	"logscribe/src/internal/limit"
	"logscribe/src/internal/metrics"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/valyala/fasthttp"
)

// HTTPSource receives events via HTTP POST requests. The request path
// names the tag: POST /app/access produces events tagged "app.access".
type HTTPSource struct {
	publisher
	host        string
	port        int64
	tag         string
	tagField    string
	maxBodySize int
	server      *fasthttp.Server
	listener    net.Listener
	rateLimiter *limit.RateLimiter
	wg          sync.WaitGroup
	logger      *log.Logger

	invalidRequests atomic.Uint64
	limitedRequests atomic.Uint64
}

// NewHTTPSource creates a new HTTP server source
func NewHTTPSource(cfg config.SourceConfig, logger *log.Logger) *HTTPSource {
	h := &HTTPSource{
		host:        cfg.Host,
		port:        cfg.Port,
		tag:         cfg.Tag,
		tagField:    cfg.TagField,
		maxBodySize: int(cfg.MaxBodySizeKB * 1024),
		logger:      logger,
	}
	h.setup("http", cfg.BufferSize)

	if cfg.RateLimit != nil {
		h.rateLimiter = limit.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize, 0)
	}

	return h
}

func (h *HTTPSource) Start() error {
	h.server = &fasthttp.Server{
		Handler:            h.requestHandler,
		Logger:             compat.NewFastHTTPAdapter(h.logger),
		MaxRequestBodySize: h.maxBodySize,
		CloseOnShutdown:    true,
	}

	addr := net.JoinHostPort(h.host, fmt.Sprint(h.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http source listen on %s: %w", addr, err)
	}
	h.listener = ln

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.server.Serve(ln); err != nil {
			h.logger.Error("msg", "HTTP source server failed",
				"component", "http_source",
				"address", addr,
				"error", err)
		}
	}()

	h.logger.Info("msg", "HTTP source started",
		"component", "http_source",
		"address", ln.Addr().String(),
		"default_tag", h.tag)
	return nil
}

// Addr returns the bound listen address, nil before Start
func (h *HTTPSource) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

func (h *HTTPSource) Stop() {
	h.logger.Info("msg", "Stopping HTTP source", "component", "http_source")

	if h.server != nil {
		if err := h.server.Shutdown(); err != nil {
			h.logger.Error("msg", "Error shutting down HTTP source server",
				"component", "http_source",
				"error", err)
		}
	}
	if h.rateLimiter != nil {
		h.rateLimiter.Stop()
	}

	h.wg.Wait()
	h.closeSubscribers()

	h.logger.Info("msg", "HTTP source stopped", "component", "http_source")
}

func (h *HTTPSource) GetStats() SourceStats {
	var rateLimitStats map[string]any
	if h.rateLimiter != nil {
		rateLimitStats = h.rateLimiter.GetStats()
	}

	return h.stats(map[string]any{
		"port":             h.port,
		"default_tag":      h.tag,
		"invalid_requests": h.invalidRequests.Load(),
		"limited_requests": h.limitedRequests.Load(),
		"rate_limit":       rateLimitStats,
	})
}

func (h *HTTPSource) requestHandler(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		h.respond(ctx, fasthttp.StatusMethodNotAllowed, map[string]any{
			"error": "Method Not Allowed",
			"hint":  "POST events to /<tag>",
		})
		return
	}

	if h.rateLimiter != nil && !h.rateLimiter.Allow(ctx.RemoteAddr().String()) {
		h.limitedRequests.Add(1)
		metrics.EventsDropped.WithLabelValues("rate_limited").Inc()
		ctx.Response.Header.Set("Retry-After", "1")
		h.respond(ctx, fasthttp.StatusTooManyRequests, map[string]any{
			"error": "Rate limit exceeded",
		})
		return
	}

	body := ctx.PostBody()
	if len(bytes.TrimSpace(body)) == 0 {
		h.invalidRequests.Add(1)
		h.respond(ctx, fasthttp.StatusBadRequest, map[string]any{
			"error": "Empty request body",
		})
		return
	}

	records, err := parseRecords(body)
	if err != nil {
		h.invalidRequests.Add(1)
		metrics.EventsDropped.WithLabelValues("invalid").Inc()
		h.respond(ctx, fasthttp.StatusBadRequest, map[string]any{
			"error": fmt.Sprintf("Invalid event format: %v", err),
		})
		return
	}

	tag := tagFromPath(string(ctx.Path()), h.tag)
	accepted := 0
	for _, record := range records {
		if h.publish(makeEvent(tag, h.tagField, record)) {
			accepted++
		}
	}
	if accepted < len(records) {
		h.logger.Debug("msg", "Dropped events - subscriber buffer full",
			"component", "http_source",
			"dropped", len(records)-accepted)
	}

	h.respond(ctx, fasthttp.StatusAccepted, map[string]any{
		"accepted": accepted,
		"total":    len(records),
	})
}

func (h *HTTPSource) respond(ctx *fasthttp.RequestCtx, status int, body map[string]any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(body); err != nil {
		h.logger.Debug("msg", "Failed to write response",
			"component", "http_source",
			"error", err)
	}
}

// tagFromPath maps "/a/b" to "a.b"; the root path uses defaultTag
func tagFromPath(path, defaultTag string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return defaultTag
	}
	return strings.ReplaceAll(path, "/", ".")
}

// parseRecords accepts a JSON object, an array of objects, or
// newline-delimited objects
func parseRecords(body []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(body)

	if trimmed[0] == '[' {
		var array []map[string]any
		if err := json.Unmarshal(trimmed, &array); err != nil {
			return nil, err
		}
		for i, record := range array {
			if record == nil {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
		}
		if len(array) == 0 {
			return nil, fmt.Errorf("empty array")
		}
		return array, nil
	}

	if record, err := decodeObject(trimmed); err == nil {
		return []map[string]any{record}, nil
	}

	var records []map[string]any
	for i, line := range splitLines(trimmed) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		record, err := decodeObject(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid events found")
	}
	return records, nil
}

// splitLines splits bytes into lines, handling both \n and \r\n
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0

	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			end := i
			if i > 0 && data[i-1] == '\r' {
				end = i - 1
			}
			if end > start {
				lines = append(lines, data[start:end])
			}
			start = i + 1
		}
	}

	if start < len(data) {
		lines = append(lines, data[start:])
	}

	return lines
}
