package filter

import (
	"context"
	"sync"

	"github.com/effective-security/jwtfilter/codec"
	"github.com/effective-security/jwtfilter/config"
	"github.com/effective-security/jwtfilter/metricskey"
	"github.com/effective-security/xlog"
)

// Event reasons
const (
	ReasonMissingField = "missing_field"
	ReasonEncode       = "encode"
	ReasonDecode       = "decode"
	ReasonVerify       = "verify"
)

// Event is a diagnostic emitted for every record that was not
// transformed successfully
type Event struct {
	Mode    config.Mode
	Codec   string
	Outcome Outcome
	Kind    codec.Kind
	Reason  string
	// Field is the record field the event refers to, if any
	Field string
	Err   error
}

// EventSink receives diagnostic events.
// Implementations must be safe for concurrent use.
type EventSink interface {
	Handle(ctx context.Context, e *Event)
}

type nopSink struct{}

func (nopSink) Handle(context.Context, *Event) {}

// Sinks fans out events to all sinks
type Sinks []EventSink

// Handle implements EventSink
func (s Sinks) Handle(ctx context.Context, e *Event) {
	for _, sink := range s {
		sink.Handle(ctx, e)
	}
}

// LogSink writes events to the package logger
type LogSink struct{}

// Handle implements EventSink
func (LogSink) Handle(_ context.Context, e *Event) {
	level := xlog.NOTICE
	if e.Outcome == Drop {
		level = xlog.WARNING
	}
	errMsg := ""
	if e.Err != nil {
		errMsg = e.Err.Error()
	}
	logger.KV(level,
		"reason", e.Reason,
		"mode", e.Mode,
		"codec", e.Codec,
		"outcome", e.Outcome,
		"kind", e.Kind,
		"field", e.Field,
		"err", errMsg)
}

// MetricsSink counts failures by error kind
type MetricsSink struct{}

// Handle implements EventSink
func (MetricsSink) Handle(_ context.Context, e *Event) {
	metricskey.FilterFailures.IncrCounter(1, e.Mode.String(), e.Kind.String())
}

// MemorySink keeps events in memory
type MemorySink struct {
	lock   sync.Mutex
	events []Event
}

// Handle implements EventSink
func (s *MemorySink) Handle(_ context.Context, e *Event) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.events = append(s.events, *e)
}

// Events returns a copy of collected events
func (s *MemorySink) Events() []Event {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Event(nil), s.events...)
}
