// Package progress carries per-item progress events from the batch pipeline
// to a caller-supplied consumer without ever stalling or destabilizing the
// batch.
package progress

import (
	"log/slog"

	"github.com/avoronov/batchdl/internal/domain"
)

// Sink receives one event after every terminal item transition.
type Sink interface {
	Notify(event domain.ProgressEvent)
}

// Func adapts a plain function to a Sink.
type Func func(event domain.ProgressEvent)

// Notify calls the wrapped function.
func (f Func) Notify(event domain.ProgressEvent) { f(event) }

// Nop discards all events.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(domain.ProgressEvent) {}

// Deliver hands an event to a sink, swallowing panics so that a misbehaving
// consumer can never abort a batch.
func Deliver(sink Sink, event domain.ProgressEvent) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("progress sink panicked, event discarded", "panic", r, "index", event.Index)
		}
	}()
	sink.Notify(event)
}

// Async decouples a slow consumer from the pipeline. Notify enqueues onto a
// buffered channel and returns immediately; when the buffer is full the
// event is dropped rather than blocking the batch.
type Async struct {
	events chan domain.ProgressEvent
	done   chan struct{}
}

// NewAsync starts the delivery goroutine for the downstream sink.
func NewAsync(downstream Sink, buffer int) *Async {
	if buffer <= 0 {
		buffer = 1
	}
	a := &Async{
		events: make(chan domain.ProgressEvent, buffer),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(a.done)
		for event := range a.events {
			Deliver(downstream, event)
		}
	}()

	return a
}

// Notify enqueues without waiting for the consumer.
func (a *Async) Notify(event domain.ProgressEvent) {
	select {
	case a.events <- event:
	default:
		slog.Debug("progress buffer full, event dropped", "index", event.Index, "total", event.Total)
	}
}

// Close stops accepting events and waits for the queue to drain.
func (a *Async) Close() {
	close(a.events)
	<-a.done
}
