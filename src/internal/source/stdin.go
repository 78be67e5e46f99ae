// FILE: logscribe/src/internal/source/stdin.go
package source

import (
	"bufio"
	"io"
	"os"
	"sync"

	"logscribe/src/internal/config"
	"logscribe/src/internal/core"

	"github.com/lixenwraith/log"
)

const maxStdinLine = 1024 * 1024

// StdinSource reads one event per line from standard input
type StdinSource struct {
	publisher
	tag      string
	tagField string
	format   string
	reader   io.Reader
	done     chan struct{}
	wg       sync.WaitGroup
	logger   *log.Logger
}

func NewStdinSource(cfg config.SourceConfig, logger *log.Logger) *StdinSource {
	return newStdinSource(cfg, os.Stdin, logger)
}

func newStdinSource(cfg config.SourceConfig, r io.Reader, logger *log.Logger) *StdinSource {
	s := &StdinSource{
		tag:      cfg.Tag,
		tagField: cfg.TagField,
		format:   cfg.Format,
		reader:   r,
		done:     make(chan struct{}),
		logger:   logger,
	}
	s.setup("stdin", cfg.BufferSize)
	return s
}

func (s *StdinSource) Start() error {
	s.wg.Add(1)
	go s.readLoop()
	s.logger.Info("msg", "Stdin source started",
		"component", "stdin_source",
		"tag", s.tag,
		"format", s.format)
	return nil
}

// Stop does not wait for the reader, which may be blocked on a read that
// never returns
func (s *StdinSource) Stop() {
	close(s.done)
	s.closeSubscribers()
	s.logger.Info("msg", "Stdin source stopped", "component", "stdin_source")
}

func (s *StdinSource) GetStats() SourceStats {
	return s.stats(map[string]any{
		"tag":    s.tag,
		"format": s.format,
	})
}

func (s *StdinSource) readLoop() {
	defer s.wg.Done()

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 64*1024), maxStdinLine)
	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if !s.publish(s.parseLine(line)) {
			s.logger.Debug("msg", "Dropped event - subscriber buffer full",
				"component", "stdin_source")
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("msg", "Scanner error reading stdin",
			"component", "stdin_source",
			"error", err)
	}
}

// parseLine decodes a json line, falling back to wrapping the raw text
func (s *StdinSource) parseLine(line []byte) core.Event {
	if s.format == "json" {
		if record, err := decodeObject(line); err == nil {
			return makeEvent(s.tag, s.tagField, record)
		}
	}
	return makeEvent(s.tag, "", map[string]any{core.MessageField: string(line)})
}
