package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/config"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

// Module exposes the Stripe gateway as the usecase payment port.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (usecase.PaymentGateway, error) {
	if p.Config.StripeAPIKey == "" {
		p.Logger.Warn("stripe api key not set, online payments are disabled")
	}
	return NewStripeGateway(Options{
		APIKey:        p.Config.StripeAPIKey,
		WebhookSecret: p.Config.StripeWebhookSecret,
		Currency:      p.Config.Currency,
		SuccessURL:    p.Config.PaymentSuccessURL,
		CancelURL:     p.Config.PaymentCancelURL,
	}, p.Logger)
}
