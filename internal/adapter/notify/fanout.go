// Package notify delivers order events to RabbitMQ and websocket subscribers.
package notify

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// Sink is one delivery target for order events.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event model.Event) error
}

// Fanout sends every event to all sinks concurrently. Delivery is best
// effort: failures are logged and never reach the caller.
type Fanout struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewFanout builds Fanout, skipping nil sinks.
func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	f := &Fanout{logger: logger}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish delivers events in order; sinks receive each event in parallel.
func (f *Fanout) Publish(ctx context.Context, events ...model.Event) {
	for _, event := range events {
		g, gctx := errgroup.WithContext(ctx)
		for _, sink := range f.sinks {
			g.Go(func() error {
				if err := sink.Publish(gctx, event); err != nil {
					f.logger.Warn("event delivery failed",
						slog.String("sink", sink.Name()),
						slog.String("event_type", string(event.Type)),
						slog.Int64("order_id", event.OrderID),
						slog.String("error", err.Error()),
					)
				}
				return nil
			})
		}
		_ = g.Wait()
	}
}
