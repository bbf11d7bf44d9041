package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// EventPublisher fans order events out to subscribers. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, events ...model.Event)
}

// OrderMailer sends order confirmation emails.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, user model.User, order model.Order) error
}

// Recorder collects business metrics.
type Recorder interface {
	OrderPlaced(method model.PaymentMethod)
	StatusChanged(from, to model.OrderStatus)
	PaymentCallback(outcome string)
	ItemClaim(success bool)
}

// PaymentGateway talks to the external payment processor.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error)
	// ExpireCheckout closes an open checkout session.
	ExpireCheckout(ctx context.Context, providerRef string) error
	// ParseCallback verifies the signature and decodes a processor notification.
	ParseCallback(payload []byte, signature string) (*model.PaymentCallback, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...model.Event) {}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced(model.PaymentMethod) {}
func (nopRecorder) StatusChanged(model.OrderStatus, model.OrderStatus) {}
func (nopRecorder) PaymentCallback(string) {}
func (nopRecorder) ItemClaim(bool) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func requireAdmin(p model.Principal) error {
	if !p.IsAdmin() {
		return domainErrors.Forbidden("admin role required")
	}
	return nil
}

func requireCook(p model.Principal) error {
	if !p.CanCook() {
		return domainErrors.Forbidden("kitchen role required")
	}
	return nil
}
