package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"padel-app/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type collectingSink struct {
	mu     sync.Mutex
	events []model.MatchEvent
	done   chan struct{}
}

func (s *collectingSink) Write(ctx context.Context, e model.MatchEvent) error {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	failing := SinkFunc(func(ctx context.Context, e model.MatchEvent) error {
		return errors.New("sink down")
	})
	collector := &collectingSink{done: make(chan struct{}, 1)}
	d := NewDispatcher(4, discardLogger(), failing, collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Publish(model.MatchEvent{MatchID: "m1", Actor: "c1", Action: "submitted", State: model.MatchAwaitingConfirmation})

	select {
	case <-collector.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("event not delivered")
	}
	collector.mu.Lock()
	defer collector.mu.Unlock()
	got := collector.events[0]
	if got.ID == "" || got.At.IsZero() {
		t.Fatalf("event id and time should be filled: %+v", got)
	}
	if got.MatchID != "m1" || got.State != model.MatchAwaitingConfirmation {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestDispatcherPublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, discardLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Publish(model.MatchEvent{MatchID: "m1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked without a running worker")
	}
	if d.Dropped() != 9 {
		t.Fatalf("dropped = %d, want 9", d.Dropped())
	}
}

func TestDispatcherFlushesOnShutdown(t *testing.T) {
	collector := &collectingSink{done: make(chan struct{}, 3)}
	d := NewDispatcher(3, discardLogger(), collector)
	for i := 0; i < 3; i++ {
		d.Publish(model.MatchEvent{MatchID: "m1"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	collector.mu.Lock()
	defer collector.mu.Unlock()
	if len(collector.events) != 3 {
		t.Fatalf("flushed %d events, want 3", len(collector.events))
	}
}
