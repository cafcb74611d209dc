package progress

import (
	"testing"
	"time"

	"github.com/avoronov/batchdl/internal/domain"
)

func TestDeliver_SwallowsPanic(t *testing.T) {
	sink := Func(func(domain.ProgressEvent) {
		panic("consumer bug")
	})

	// Must not propagate.
	Deliver(sink, domain.ProgressEvent{Index: 1, Total: 2, Label: "x"})
}

func TestDeliver_NilSink(t *testing.T) {
	Deliver(nil, domain.ProgressEvent{Index: 1, Total: 1})
}

func TestAsync_DeliversInOrder(t *testing.T) {
	got := make([]domain.ProgressEvent, 0, 3)
	done := make(chan struct{})

	sink := NewAsync(Func(func(e domain.ProgressEvent) {
		got = append(got, e)
		if len(got) == 3 {
			close(done)
		}
	}), 8)

	for i := 1; i <= 3; i++ {
		sink.Notify(domain.ProgressEvent{Index: i, Total: 3, Label: "item"})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for events")
	}
	sink.Close()

	for i, e := range got {
		if e.Index != i+1 {
			t.Errorf("event %d: expected index %d, got %d", i, i+1, e.Index)
		}
	}
}

func TestAsync_NeverBlocksCaller(t *testing.T) {
	blocked := make(chan struct{})
	sink := NewAsync(Func(func(domain.ProgressEvent) {
		<-blocked
	}), 1)
	defer close(blocked)

	done := make(chan struct{})
	go func() {
		// Far more events than the buffer holds; extras are dropped.
		for i := 0; i < 100; i++ {
			sink.Notify(domain.ProgressEvent{Index: i, Total: 100})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a slow consumer")
	}
}
