// FILE: logscribe/src/internal/service/service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"logscribe/src/internal/buffer"
	"logscribe/src/internal/config"
	"logscribe/src/internal/filter"
	"logscribe/src/internal/output"
	"logscribe/src/internal/source"

	"github.com/lixenwraith/log"
)

// Service owns the sources, the filter chain, the buffer and the scribe
// output, and moves events between them.
type Service struct {
	cfg     *config.Config
	sources []source.Source
	chain   *filter.Chain
	output  buffer.Output
	buffer  *buffer.Buffer
	stats   *PipelineStats
	logger  *log.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New builds a service from a validated configuration. Nothing runs until Start.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Service, error) {
	out, err := output.New(cfg.Scribe, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create scribe output: %w", err)
	}

	sources := make([]source.Source, 0, len(cfg.Sources))
	for i, srcCfg := range cfg.Sources {
		src, err := source.New(srcCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create source[%d]: %w", i, err)
		}
		sources = append(sources, src)
	}

	return newService(ctx, cfg, out, sources, logger)
}

func newService(ctx context.Context, cfg *config.Config, out buffer.Output, sources []source.Source, logger *log.Logger) (*Service, error) {
	chain, err := filter.NewChain(cfg.Filters, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter chain: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(ctx)
	return &Service{
		cfg:     cfg,
		sources: sources,
		chain:   chain,
		output:  out,
		buffer:  buffer.New(cfg.Buffer, out, logger),
		stats:   &PipelineStats{StartTime: time.Now()},
		logger:  logger,
		ctx:     serviceCtx,
		cancel:  cancel,
	}, nil
}

// Start launches the buffer workers, wires every source and starts them.
// On a source failure everything already started is shut down.
func (s *Service) Start() error {
	s.buffer.Start(s.ctx)

	for _, src := range s.sources {
		s.wireSource(src)
	}

	for i, src := range s.sources {
		if err := src.Start(); err != nil {
			s.Shutdown()
			return fmt.Errorf("failed to start source[%d]: %w", i, err)
		}
	}

	s.logger.Info("msg", "Service started",
		"component", "service",
		"sources", len(s.sources),
		"filters", s.chain.Len(),
		"scribe", s.cfg.Scribe.Address())
	return nil
}

// Shutdown stops intake first, then drains the buffer through the output,
// then cancels the service context
func (s *Service) Shutdown() {
	s.stopOnce.Do(func() {
		s.logger.Info("msg", "Service shutdown initiated", "component", "service")

		var wg sync.WaitGroup
		for _, src := range s.sources {
			wg.Add(1)
			go func(src source.Source) {
				defer wg.Done()
				src.Stop()
			}(src)
		}
		wg.Wait()

		// Consumers exit once their subscriber channels are closed
		s.wg.Wait()

		s.buffer.Stop()
		s.cancel()

		s.logger.Info("msg", "Service shutdown complete",
			"component", "service",
			"total_processed", s.stats.TotalEventsProcessed.Load(),
			"total_buffered", s.stats.TotalEventsBuffered.Load())
	})
}

// GetGlobalStats returns statistics for every component
func (s *Service) GetGlobalStats() map[string]any {
	sourceStats := make([]map[string]any, 0, len(s.sources))
	for _, src := range s.sources {
		stats := src.GetStats()
		sourceStats = append(sourceStats, map[string]any{
			"type":            stats.Type,
			"total_entries":   stats.TotalEntries,
			"dropped_entries": stats.DroppedEntries,
			"start_time":      stats.StartTime,
			"last_entry_time": stats.LastEntryTime,
			"details":         stats.Details,
		})
	}

	stats := map[string]any{
		"uptime_seconds":  int(time.Since(s.stats.StartTime).Seconds()),
		"total_processed": s.stats.TotalEventsProcessed.Load(),
		"total_filtered":  s.stats.TotalEventsFiltered.Load(),
		"total_buffered":  s.stats.TotalEventsBuffered.Load(),
		"total_unencoded": s.stats.TotalEventsUnencoded.Load(),
		"total_overflow":  s.stats.TotalEventsOverflow.Load(),
		"sources":         sourceStats,
		"filters":         s.chain.GetStats(),
		"buffer":          s.buffer.GetStats(),
	}

	if o, ok := s.output.(interface{ GetStats() map[string]any }); ok {
		stats["output"] = o.GetStats()
	}
	return stats
}
