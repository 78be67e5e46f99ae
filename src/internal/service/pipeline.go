// FILE: logscribe/src/internal/service/pipeline.go
package service

import (
	"errors"
	"sync/atomic"
	"time"

	"logscribe/src/internal/buffer"
	"logscribe/src/internal/core"
	"logscribe/src/internal/metrics"
	"logscribe/src/internal/output"
	"logscribe/src/internal/source"
)

// PipelineStats counts events on their way from sources to the buffer
type PipelineStats struct {
	StartTime            time.Time
	TotalEventsProcessed atomic.Uint64
	TotalEventsFiltered  atomic.Uint64
	TotalEventsBuffered  atomic.Uint64
	TotalEventsUnencoded atomic.Uint64
	TotalEventsOverflow  atomic.Uint64
}

// wireSource subscribes to src and feeds its events into the buffer
func (s *Service) wireSource(src source.Source) {
	events := src.Subscribe()
	kind := src.GetStats().Type

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Panic recovery to prevent a single event from crashing the process
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("msg", "Panic in event processing",
					"component", "service",
					"source", kind,
					"panic", r)
			}
		}()

		for ev := range events {
			if !s.process(kind, ev) {
				return
			}
		}
	}()
}

// process runs one event through the filter chain into the buffer;
// false means the buffer no longer accepts events
func (s *Service) process(kind string, ev core.Event) bool {
	s.stats.TotalEventsProcessed.Add(1)

	if !s.chain.Apply(ev) {
		s.stats.TotalEventsFiltered.Add(1)
		return true
	}

	err := s.buffer.Emit(ev)
	if err == nil {
		s.stats.TotalEventsBuffered.Add(1)
		return true
	}

	var encErr *output.EncodingError
	switch {
	case errors.As(err, &encErr):
		s.stats.TotalEventsUnencoded.Add(1)
		metrics.EventsDropped.WithLabelValues("encoding").Inc()
		s.logger.Warn("msg", "Event could not be encoded, skipping",
			"component", "service",
			"source", kind,
			"tag", ev.Tag,
			"error", err)
		return true

	case errors.Is(err, buffer.ErrBufferFull):
		s.stats.TotalEventsOverflow.Add(1)
		metrics.EventsDropped.WithLabelValues("buffer_full").Inc()
		s.logger.Debug("msg", "Dropped event - buffer queue full",
			"component", "service",
			"source", kind,
			"tag", ev.Tag)
		return true

	case errors.Is(err, buffer.ErrStopped):
		return false

	default:
		s.logger.Error("msg", "Unexpected buffer error",
			"component", "service",
			"source", kind,
			"error", err)
		return true
	}
}
