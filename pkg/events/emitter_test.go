package events

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"workbench/pkg/proto"
)

func TestEmitDeliversInOrder(t *testing.T) {
	var got []proto.Event
	emitter := NewEmitter(SinkFunc(func(e proto.Event) error {
		got = append(got, e)
		return nil
	}))

	emitter.Emit(proto.NewTokenEvent("a"))
	emitter.Emit(proto.NewTokenEvent("b"))
	emitter.Emit(proto.NewCompleteEvent())

	assert.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Content)
	assert.Equal(t, "b", got[1].Content)
	assert.Equal(t, proto.EventTypeComplete, got[2].Type)
}

func TestNoEventsAfterAbort(t *testing.T) {
	var got []proto.Event
	emitter := NewEmitter(SinkFunc(func(e proto.Event) error {
		got = append(got, e)
		return nil
	}))

	emitter.Emit(proto.NewTokenEvent("before"))
	emitter.Abort()
	emitter.Emit(proto.NewTokenEvent("after"))
	emitter.Emit(proto.NewCompleteEvent())

	assert.True(t, emitter.Aborted())
	assert.Len(t, got, 1)
	assert.Equal(t, "before", got[0].Content)
}

func TestSinkErrorIsSwallowed(t *testing.T) {
	emitter := NewEmitter(SinkFunc(func(proto.Event) error {
		return fmt.Errorf("broken pipe")
	}))
	assert.NotPanics(t, func() {
		emitter.Emit(proto.NewTokenEvent("x"))
	})
}
