// FILE: logscribe/src/internal/source/source.go
package source

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"
	"logscribe/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// Source is an input event stream
type Source interface {
	// Returns a channel that receives events
	Subscribe() <-chan core.Event

	// Begins reading from the source
	Start() error

	// Gracefully shuts down the source and closes subscriber channels
	Stop()

	// Returns source statistics
	GetStats() SourceStats
}

// SourceStats contains statistics about a source
type SourceStats struct {
	Type           string
	TotalEntries   uint64
	DroppedEntries uint64
	StartTime      time.Time
	LastEntryTime  time.Time
	Details        map[string]any
}

// New creates the source described by cfg
func New(cfg config.SourceConfig, logger *log.Logger) (Source, error) {
	switch cfg.Type {
	case "stdin":
		return NewStdinSource(cfg, logger), nil
	case "http":
		return NewHTTPSource(cfg, logger), nil
	case "tcp":
		return NewTCPSource(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
	}
}

// publisher fans events out to subscribers without blocking the reader.
// Sends after close are discarded.
type publisher struct {
	kind        string
	bufferSize  int64
	subscribers []chan core.Event
	mu          sync.RWMutex
	closed      bool

	totalEntries   atomic.Uint64
	droppedEntries atomic.Uint64
	startTime      time.Time
	lastEntryTime  atomic.Value // time.Time
}

func (p *publisher) setup(kind string, bufferSize int64) {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	p.kind = kind
	p.bufferSize = bufferSize
	p.startTime = time.Now()
}

func (p *publisher) Subscribe() <-chan core.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan core.Event, p.bufferSize)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// publish reports whether every subscriber received ev
func (p *publisher) publish(ev core.Event) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}

	p.totalEntries.Add(1)
	p.lastEntryTime.Store(ev.Time)
	metrics.EventsReceived.WithLabelValues(p.kind).Inc()

	delivered := true
	for _, ch := range p.subscribers {
		select {
		case ch <- ev:
		default:
			delivered = false
			p.droppedEntries.Add(1)
			metrics.EventsDropped.WithLabelValues("subscriber_full").Inc()
		}
	}
	return delivered
}

func (p *publisher) closeSubscribers() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for _, ch := range p.subscribers {
		close(ch)
	}
}

func (p *publisher) stats(details map[string]any) SourceStats {
	lastEntry, _ := p.lastEntryTime.Load().(time.Time)
	return SourceStats{
		Type:           p.kind,
		TotalEntries:   p.totalEntries.Load(),
		DroppedEntries: p.droppedEntries.Load(),
		StartTime:      p.startTime,
		LastEntryTime:  lastEntry,
		Details:        details,
	}
}

// decodeObject parses one JSON object
func decodeObject(data []byte) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("not a JSON object")
	}
	return record, nil
}

// makeEvent builds an event stamped now. When tagField names a non-empty
// string field, that field becomes the tag and is removed from the record.
func makeEvent(defaultTag, tagField string, record map[string]any) core.Event {
	tag := defaultTag
	if tagField != "" {
		if v, ok := record[tagField].(string); ok && v != "" {
			tag = v
			delete(record, tagField)
		}
	}
	return core.Event{Tag: tag, Time: time.Now(), Record: record}
}
