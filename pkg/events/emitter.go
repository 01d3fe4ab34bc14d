// Package events delivers run notifications from the orchestrator to a
// transport sink in emission order, with cooperative abort.
package events

import (
	"sync/atomic"

	"workbench/pkg/logx"
	"workbench/pkg/proto"
)

// Sink receives events for delivery. Implementations must deliver each
// event before returning; buffering would break the ordered typewriter
// contract observed by clients.
type Sink interface {
	Send(event proto.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event proto.Event) error

func (f SinkFunc) Send(event proto.Event) error {
	return f(event)
}

// Emitter wraps a sink with the run's abort flag. Once aborted, no
// further events reach the sink; the caller emits the single terminal
// error event itself before setting the flag.
type Emitter struct {
	sink    Sink
	logger  *logx.Logger
	aborted atomic.Bool
}

// NewEmitter creates an emitter over the given sink.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{
		sink:   sink,
		logger: logx.NewLogger("events"),
	}
}

// Emit delivers one event unless the emitter has been aborted. Sink
// failures are logged and swallowed; a broken transport must not crash
// the workflow.
func (e *Emitter) Emit(event proto.Event) {
	if e.aborted.Load() {
		return
	}
	if err := e.sink.Send(event); err != nil {
		e.logger.Warn("failed to deliver %s event: %v", event.Type, err)
	}
}

// Abort marks the emitter aborted. All subsequent Emit calls are
// silently dropped.
func (e *Emitter) Abort() {
	e.aborted.Store(true)
}

// Aborted reports whether the emitter has been aborted.
func (e *Emitter) Aborted() bool {
	return e.aborted.Load()
}
