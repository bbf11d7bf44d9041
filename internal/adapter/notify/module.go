package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/config"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

// Module provides the websocket hub, the optional AMQP publisher and the
// fan-out publisher used by the usecases.
var Module = fx.Provide(
	newHub,
	newAMQPPublisher,
	newFanout,
)

type hubParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *slog.Logger
}

func newHub(p hubParams) *Hub {
	hub := NewHub(p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			hub.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			hub.Stop()
			return nil
		},
	})
	return hub
}

type amqpParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

// newAMQPPublisher returns nil when no broker is configured or reachable;
// events then only reach websocket clients.
func newAMQPPublisher(p amqpParams) *AMQPPublisher {
	if p.Config.AMQPURL == "" {
		return nil
	}
	publisher, err := DialAMQP(p.Config.AMQPURL, p.Config.AMQPExchange, p.Logger)
	if err != nil {
		p.Logger.Warn("amqp unavailable, broker notifications disabled", slog.String("error", err.Error()))
		return nil
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}

type fanoutParams struct {
	fx.In

	Hub    *Hub
	AMQP   *AMQPPublisher
	Logger *slog.Logger
}

func newFanout(p fanoutParams) usecase.EventPublisher {
	sinks := []Sink{p.Hub}
	if p.AMQP != nil {
		sinks = append(sinks, p.AMQP)
	}
	return NewFanout(p.Logger, sinks...)
}
