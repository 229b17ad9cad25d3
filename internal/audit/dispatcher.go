// Package audit delivers match transition events off the request path.
package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"padel-app/internal/model"

	"github.com/google/uuid"
)

// Sink receives every published event. Errors are logged and dropped.
type Sink interface {
	Write(ctx context.Context, e model.MatchEvent) error
}

type SinkFunc func(ctx context.Context, e model.MatchEvent) error

func (f SinkFunc) Write(ctx context.Context, e model.MatchEvent) error { return f(ctx, e) }

// Recorder is the store method the store sink needs.
type Recorder interface {
	RecordEvent(ctx context.Context, e model.MatchEvent) error
}

func StoreSink(r Recorder) Sink {
	return SinkFunc(r.RecordEvent)
}

func LogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(ctx context.Context, e model.MatchEvent) error {
		logger.InfoContext(ctx, "match event",
			"match_id", e.MatchID,
			"actor", e.Actor,
			"action", e.Action,
			"state", e.State,
		)
		return nil
	})
}

type Dispatcher struct {
	events  chan model.MatchEvent
	sinks   []Sink
	logger  *slog.Logger
	timeout time.Duration
	dropped atomic.Int64
}

func NewDispatcher(buffer int, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		events:  make(chan model.MatchEvent, buffer),
		sinks:   sinks,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Publish queues e without blocking. When the buffer is full the event is
// dropped.
func (d *Dispatcher) Publish(e model.MatchEvent) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case d.events <- e:
	default:
		d.dropped.Add(1)
		d.logger.Warn("audit buffer full, dropping event", "match_id", e.MatchID, "action", e.Action)
	}
}

func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run delivers events until ctx is cancelled, then flushes what is queued.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case e := <-d.events:
			d.deliver(ctx, e)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	for {
		select {
		case e := <-d.events:
			d.deliver(ctx, e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e model.MatchEvent) {
	for _, sink := range d.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := d.write(sinkCtx, sink, e)
		cancel()
		if err != nil {
			d.logger.Error("audit sink failed", "match_id", e.MatchID, "action", e.Action, "error", err)
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, sink Sink, e model.MatchEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("audit sink panicked", "match_id", e.MatchID, "panic", r)
		}
	}()
	return sink.Write(ctx, e)
}
