// ABOUTME: Log sink abstraction the handler emits formatted records to
// ABOUTME: Ships a slog-backed implementation and a test-friendly buffer sink

package handler

import (
	"log/slog"
	"sync"
)

// Sink receives formatted log lines. Implementations must not return
// errors to the caller; emission is fire-and-forget.
type Sink interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// SlogSink adapts a slog.Logger to the Sink interface.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink backed by the given logger. A nil logger
// falls back to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Info(msg string)  { s.logger.Info(msg) }
func (s *SlogSink) Warn(msg string)  { s.logger.Warn(msg) }
func (s *SlogSink) Error(msg string) { s.logger.Error(msg) }

// BufferSink records emitted lines in memory. Used in tests and by the
// CLI to collect output before printing.
type BufferSink struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (b *BufferSink) Info(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.infos = append(b.infos, msg)
}

func (b *BufferSink) Warn(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warns = append(b.warns, msg)
}

func (b *BufferSink) Error(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, msg)
}

// Infos returns a copy of the recorded info lines.
func (b *BufferSink) Infos() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.infos...)
}

// Warns returns a copy of the recorded warn lines.
func (b *BufferSink) Warns() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.warns...)
}

// Errors returns a copy of the recorded error lines.
func (b *BufferSink) Errors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.errors...)
}
