// FILE: logscribe/src/internal/filter/chain.go
package filter

import (
	"fmt"
	"sync/atomic"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"
	"logscribe/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// Chain runs every event through all filters; one rejection drops it
type Chain struct {
	filters []*Filter
	logger  *log.Logger

	totalProcessed atomic.Uint64
	totalPassed    atomic.Uint64
}

// NewChain builds the chain in configuration order. An empty chain passes
// every event.
func NewChain(configs []config.FilterConfig, logger *log.Logger) (*Chain, error) {
	filters := make([]*Filter, 0, len(configs))
	for i, cfg := range configs {
		f, err := NewFilter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		filters = append(filters, f)
	}

	if len(filters) > 0 {
		logger.Info("msg", "Filter chain created",
			"component", "filter_chain",
			"filter_count", len(filters))
	}
	return &Chain{filters: filters, logger: logger}, nil
}

// Len returns the number of filters
func (c *Chain) Len() int {
	return len(c.filters)
}

// Apply reports whether ev survives every filter
func (c *Chain) Apply(ev core.Event) bool {
	c.totalProcessed.Add(1)

	for i, f := range c.filters {
		if f.Apply(ev) {
			continue
		}
		metrics.EventsDropped.WithLabelValues("filtered").Inc()
		c.logger.Debug("msg", "Event filtered out",
			"component", "filter_chain",
			"tag", ev.Tag,
			"filter_index", i,
			"filter_type", f.config.Type)
		return false
	}

	c.totalPassed.Add(1)
	return true
}

// GetStats returns aggregated statistics for the entire chain
func (c *Chain) GetStats() map[string]any {
	filterStats := make([]map[string]any, 0, len(c.filters))
	for _, f := range c.filters {
		filterStats = append(filterStats, f.GetStats())
	}

	return map[string]any{
		"filter_count":    len(c.filters),
		"total_processed": c.totalProcessed.Load(),
		"total_passed":    c.totalPassed.Load(),
		"filters":         filterStats,
	}
}
