// FILE: logscribe/src/internal/metrics/server.go
package metrics

import (
	"fmt"
	"sync"
	"time"

	"logscribe/src/internal/config"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Server exposes the default Prometheus registry over fasthttp
type Server struct {
	config  config.MetricsConfig
	server  *fasthttp.Server
	metrics fasthttp.RequestHandler
	wg      sync.WaitGroup
	logger  *log.Logger
}

func NewServer(cfg config.MetricsConfig, logger *log.Logger) *Server {
	return &Server{
		config:  cfg,
		metrics: fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()),
		logger:  logger,
	}
}

func (s *Server) Start() error {
	s.server = &fasthttp.Server{
		Handler:         s.requestHandler,
		Logger:          compat.NewFastHTTPAdapter(s.logger),
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		CloseOnShutdown: true,
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errChan := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("msg", "Metrics server starting",
			"component", "metrics",
			"address", addr,
			"path", s.config.Path)

		if err := s.server.ListenAndServe(addr); err != nil {
			s.logger.Error("msg", "Metrics server failed",
				"component", "metrics",
				"address", addr,
				"error", err)
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *Server) Stop() {
	if s.server != nil {
		if err := s.server.Shutdown(); err != nil {
			s.logger.Error("msg", "Error shutting down metrics server",
				"component", "metrics",
				"error", err)
		}
	}
	s.wg.Wait()
	s.logger.Info("msg", "Metrics server stopped")
}

func (s *Server) requestHandler(ctx *fasthttp.RequestCtx) {
	if string(ctx.Path()) != s.config.Path {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	s.metrics(ctx)
}
