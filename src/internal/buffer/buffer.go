// FILE: logscribe/src/internal/buffer/buffer.go
package buffer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"
	"logscribe/src/internal/metrics"

	"github.com/lixenwraith/log"
)

var (
	// ErrBufferFull is returned by Emit when no chunk can be sealed
	ErrBufferFull = errors.New("buffer queue is full")

	// ErrStopped is returned by Emit after Stop
	ErrStopped = errors.New("buffer is stopped")
)

// Output is what the buffer drives: a per-event encoder and a per-chunk
// writer. Write may be called from several workers at once.
type Output interface {
	Format(ev core.Event) ([]byte, error)
	Write(ctx context.Context, chunk []byte) error
}

// Chunk is a sealed batch of encoded events
type Chunk struct {
	ID       uint64
	Data     []byte
	Records  int
	Created  time.Time
	Attempts int
}

// Buffer accumulates encoded events into chunks and flushes them through
// the output with retry and backoff.
type Buffer struct {
	output Output
	logger *log.Logger

	chunkLimit    int
	flushInterval time.Duration
	workers       int
	retryWait     time.Duration
	maxRetryWait  time.Duration
	retryLimit    int

	mu      sync.Mutex
	current *Chunk
	nextID  uint64
	started bool
	stopped bool

	queue chan *Chunk
	done  chan struct{}
	wg    sync.WaitGroup

	// Statistics
	totalEvents    atomic.Uint64
	chunksQueued   atomic.Uint64
	chunksFlushed  atomic.Uint64
	chunksDropped  atomic.Uint64
	totalRetries   atomic.Uint64
	overflowEvents atomic.Uint64
	startTime      time.Time
}

// New creates a stopped buffer for output
func New(cfg config.BufferConfig, output Output, logger *log.Logger) *Buffer {
	return &Buffer{
		output:        output,
		logger:        logger,
		chunkLimit:    int(cfg.ChunkLimitKB) * 1024,
		flushInterval: time.Duration(cfg.FlushIntervalSeconds) * time.Second,
		workers:       int(cfg.FlushWorkers),
		retryWait:     time.Duration(cfg.RetryWaitMs) * time.Millisecond,
		maxRetryWait:  time.Duration(cfg.MaxRetryWaitSeconds) * time.Second,
		retryLimit:    int(cfg.RetryLimit),
		queue:         make(chan *Chunk, cfg.QueueLimit),
		done:          make(chan struct{}),
		startTime:     time.Now(),
	}
}

// Start launches the flush ticker and the flush workers
func (b *Buffer) Start(ctx context.Context) {
	b.mu.Lock()
	b.started = true
	b.mu.Unlock()

	b.wg.Add(1)
	go b.flushTicker(ctx)

	var workers sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			b.flushLoop(ctx, id)
		}(i)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		workers.Wait()
	}()

	b.logger.Info("msg", "Buffer started",
		"component", "buffer",
		"chunk_limit_bytes", b.chunkLimit,
		"queue_limit", cap(b.queue),
		"flush_interval", b.flushInterval,
		"flush_workers", b.workers)
}

// Stop seals the current chunk, gives every queued chunk one last attempt
// and waits for the workers to finish
func (b *Buffer) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	close(b.done)
	if b.current != nil && b.current.Records > 0 {
		if !b.started || !b.enqueueLocked(b.current, true) {
			b.drop(b.current, "stopped", ErrBufferFull)
		}
	}
	b.current = nil
	close(b.queue)
	if !b.started {
		// No worker will ever drain the queue
		for chunk := range b.queue {
			b.drop(chunk, "stopped", ErrStopped)
		}
	}
	b.mu.Unlock()

	b.wg.Wait()

	b.logger.Info("msg", "Buffer stopped",
		"component", "buffer",
		"chunks_flushed", b.chunksFlushed.Load(),
		"chunks_dropped", b.chunksDropped.Load())
}

// Emit encodes ev and appends it to the current chunk
func (b *Buffer) Emit(ev core.Event) error {
	data, err := b.output.Format(ev)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return ErrStopped
	}

	if b.current != nil && b.current.Records > 0 && len(b.current.Data)+len(data) > b.chunkLimit {
		if !b.enqueueLocked(b.current, false) {
			b.overflowEvents.Add(1)
			return ErrBufferFull
		}
		b.current = nil
	}

	if b.current == nil {
		b.nextID++
		b.current = &Chunk{
			ID:      b.nextID,
			Data:    make([]byte, 0, len(data)),
			Created: time.Now(),
		}
	}

	b.current.Data = append(b.current.Data, data...)
	b.current.Records++
	b.totalEvents.Add(1)
	metrics.BufferBytes.Set(float64(len(b.current.Data)))
	return nil
}

// Seal queues the current chunk now, if it holds anything
func (b *Buffer) Seal() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped || b.current == nil || b.current.Records == 0 {
		return false
	}
	if !b.enqueueLocked(b.current, false) {
		return false
	}
	b.current = nil
	return true
}

// enqueueLocked hands a chunk to the workers. With block unset it fails
// instead of waiting for queue space.
func (b *Buffer) enqueueLocked(c *Chunk, block bool) bool {
	if block {
		b.queue <- c
	} else {
		select {
		case b.queue <- c:
		default:
			return false
		}
	}

	b.chunksQueued.Add(1)
	metrics.QueueDepth.Set(float64(len(b.queue)))
	metrics.BufferBytes.Set(0)
	return true
}

func (b *Buffer) flushTicker(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			if b.Seal() {
				b.logger.Debug("msg", "Chunk sealed by flush interval",
					"component", "buffer")
			}
		}
	}
}

func (b *Buffer) flushLoop(ctx context.Context, worker int) {
	for chunk := range b.queue {
		metrics.QueueDepth.Set(float64(len(b.queue)))
		b.flush(ctx, worker, chunk)
	}
}

// flush writes one chunk, retrying with exponential backoff until it
// succeeds, the retry limit is hit, or the error cannot be retried
func (b *Buffer) flush(ctx context.Context, worker int, chunk *Chunk) {
	wait := b.retryWait

	for {
		chunk.Attempts++
		err := b.output.Write(ctx, chunk.Data)
		if err == nil {
			b.chunksFlushed.Add(1)
			metrics.ChunksFlushed.WithLabelValues("success").Inc()
			return
		}

		if isUnrecoverable(err) {
			b.drop(chunk, "unrecoverable", err)
			return
		}

		if chunk.Attempts >= b.retryLimit || b.stopping() {
			b.drop(chunk, "retry_limit", err)
			return
		}

		b.totalRetries.Add(1)
		metrics.ChunksFlushed.WithLabelValues("retry").Inc()
		b.logger.Warn("msg", "Chunk flush failed, will retry",
			"component", "buffer",
			"worker", worker,
			"chunk_id", chunk.ID,
			"attempt", chunk.Attempts,
			"retry_in", wait,
			"error", err)

		select {
		case <-ctx.Done():
			b.drop(chunk, "cancelled", err)
			return
		case <-b.done:
			// One more attempt is made on the next iteration, then dropped
		case <-time.After(wait):
		}

		wait *= 2
		if wait > b.maxRetryWait {
			wait = b.maxRetryWait
		}
	}
}

func (b *Buffer) drop(chunk *Chunk, reason string, err error) {
	b.chunksDropped.Add(1)
	metrics.ChunksFlushed.WithLabelValues("dropped").Inc()
	b.logger.Error("msg", "Discarding chunk",
		"component", "buffer",
		"chunk_id", chunk.ID,
		"records", chunk.Records,
		"attempts", chunk.Attempts,
		"reason", reason,
		"error", err)
}

func (b *Buffer) stopping() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func isUnrecoverable(err error) bool {
	var u interface{ Unrecoverable() bool }
	return errors.As(err, &u) && u.Unrecoverable()
}

// GetStats returns buffer statistics
func (b *Buffer) GetStats() map[string]any {
	b.mu.Lock()
	currentBytes, currentRecords := 0, 0
	if b.current != nil {
		currentBytes = len(b.current.Data)
		currentRecords = b.current.Records
	}
	b.mu.Unlock()

	return map[string]any{
		"total_events":    b.totalEvents.Load(),
		"overflow_events": b.overflowEvents.Load(),
		"chunks_queued":   b.chunksQueued.Load(),
		"chunks_flushed":  b.chunksFlushed.Load(),
		"chunks_dropped":  b.chunksDropped.Load(),
		"total_retries":   b.totalRetries.Load(),
		"queue_length":    len(b.queue),
		"current_bytes":   currentBytes,
		"current_records": currentRecords,
		"uptime":          fmt.Sprint(time.Since(b.startTime).Round(time.Second)),
	}
}
