// FILE: logscribe/src/internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logscribe_events_received_total",
			Help: "Total number of events accepted from sources",
		},
		[]string{"source"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logscribe_events_dropped_total",
			Help: "Total number of events dropped before buffering",
		},
		[]string{"reason"},
	)

	// Buffer
	ChunksFlushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logscribe_chunks_flushed_total",
			Help: "Total number of chunk flush attempts by outcome",
		},
		[]string{"status"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "logscribe_buffer_queue_depth",
			Help: "Sealed chunks waiting for a flush worker",
		},
	)

	BufferBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "logscribe_buffer_current_bytes",
			Help: "Encoded bytes in the chunk being filled",
		},
	)

	// Output
	EntriesShipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logscribe_entries_shipped_total",
			Help: "Total number of entries accepted by the collector",
		},
	)

	EntriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logscribe_entries_skipped_total",
			Help: "Total number of records without the configured message field",
		},
	)

	FlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logscribe_flush_duration_seconds",
			Help:    "Duration of one chunk flush, connect to close",
			Buckets: prometheus.DefBuckets,
		},
	)
)
