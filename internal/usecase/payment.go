package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/fx"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

// Callback outcomes reported to the metrics recorder besides payment statuses.
const (
	callbackUnverified = "unverified"
	callbackIgnored    = "ignored"
	callbackUnknown    = "unknown"
	callbackDuplicate  = "duplicate"
)

// PaymentParams lists PaymentUseCase dependencies.
type PaymentParams struct {
	fx.In

	Store     repository.Store
	Machine   *StatusMachine
	Gateway   PaymentGateway
	Logger    *slog.Logger
	Publisher EventPublisher `optional:"true"`
	Metrics   Recorder       `optional:"true"`
}

// PaymentUseCase creates checkout links and reconciles processor callbacks.
type PaymentUseCase struct {
	store     repository.Store
	machine   *StatusMachine
	gateway   PaymentGateway
	publisher EventPublisher
	metrics   Recorder
	logger    *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(p PaymentParams) *PaymentUseCase {
	return &PaymentUseCase{
		store:     p.Store,
		machine:   p.Machine,
		gateway:   p.Gateway,
		publisher: publisherOrNop(p.Publisher),
		metrics:   recorderOrNop(p.Metrics),
		logger:    p.Logger,
	}
}

// CreatePaymentLink returns a hosted checkout URL for a PENDING order. Repeated
// calls refresh the link stored on the order's single payment record.
func (u *PaymentUseCase) CreatePaymentLink(ctx context.Context, p model.Principal, orderID int64) (string, error) {
	order, err := u.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !order.IsOwnedBy(p.UserID) {
		return "", domainErrors.Forbidden("order belongs to another user")
	}
	if order.Status != model.OrderStatusPending {
		return "", domainErrors.OrderNotPending(orderID)
	}
	if !order.Total.IsPositive() {
		return "", domainErrors.Validation("order total must be positive")
	}

	var superseded string
	existing, err := u.store.Payments().GetByOrderID(ctx, orderID)
	switch {
	case err == nil && existing.Status != model.PaymentStatusPending:
		return "", domainErrors.ErrDuplicatePayment
	case err == nil:
		superseded = existing.ProviderRef
	case !errors.Is(err, domainErrors.ErrNotFound):
		return "", err
	}

	session, err := u.gateway.CreateCheckout(ctx, checkoutRequest(order))
	if err != nil {
		if domainErrors.KindOf(err) == domainErrors.KindExternal {
			return "", err
		}
		return "", domainErrors.ExternalFailure("payment processor request failed", err)
	}

	payment := &model.Payment{
		OrderID:     order.ID,
		Amount:      order.Total,
		ProviderRef: session.ProviderRef,
		LinkRef:     session.LinkRef,
		CheckoutURL: session.URL,
	}
	if err := u.store.Payments().Upsert(ctx, payment); err != nil {
		return "", err
	}
	if superseded != "" && superseded != session.ProviderRef {
		u.expireSuperseded(ctx, order.ID, superseded)
	}
	return session.URL, nil
}

// expireSuperseded closes a replaced checkout session so it can no longer be paid.
func (u *PaymentUseCase) expireSuperseded(ctx context.Context, orderID int64, providerRef string) {
	if err := u.gateway.ExpireCheckout(ctx, providerRef); err != nil {
		u.logger.Warn("superseded checkout not expired",
			slog.Int64("order", orderID),
			slog.String("session", providerRef),
			slog.String("error", err.Error()))
	}
}

func checkoutRequest(order *model.Order) model.CheckoutRequest {
	lines := make([]model.CheckoutLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, model.CheckoutLine{
			Name:       item.ProductName,
			Quantity:   item.Quantity,
			UnitAmount: item.UnitPrice,
		})
	}
	return model.CheckoutRequest{
		OrderID:     order.ID,
		Amount:      order.Total,
		Description: fmt.Sprintf("Order #%d", order.ID),
		Lines:       lines,
	}
}

// HandleCallback reconciles a processor notification. Unverifiable, unknown and
// duplicate deliveries are logged and dropped; only store failures are returned.
func (u *PaymentUseCase) HandleCallback(ctx context.Context, payload []byte, signature string) error {
	cb, err := u.gateway.ParseCallback(payload, signature)
	if err != nil {
		u.logger.Warn("payment callback rejected", slog.String("error", err.Error()))
		u.metrics.PaymentCallback(callbackUnverified)
		return nil
	}
	if cb.Outcome == "" {
		u.logger.Debug("payment callback ignored", slog.String("event", cb.EventType))
		u.metrics.PaymentCallback(callbackIgnored)
		return nil
	}

	box := &outbox{}
	outcome := callbackDuplicate
	var orderID int64
	err = u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		payment, err := u.findPayment(ctx, cb)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				outcome = callbackUnknown
				return nil
			}
			return err
		}
		orderID = payment.OrderID
		if cb.Outcome != model.PaymentStatusSuccess && cb.ProviderRef != payment.ProviderRef {
			u.logger.Info("stale payment callback dropped",
				slog.Int64("order", payment.OrderID),
				slog.String("session", cb.ProviderRef))
			outcome = callbackIgnored
			return nil
		}

		order, err := u.store.Orders().GetForUpdate(ctx, payment.OrderID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				outcome = callbackUnknown
				return nil
			}
			return err
		}
		if order.Status != model.OrderStatusPending {
			return nil
		}

		settled, err := u.store.Payments().Settle(ctx, payment.ID, cb.Outcome, cb.Signature)
		if err != nil {
			return err
		}
		if !settled {
			u.logger.Warn("payment already settled for pending order",
				slog.Int64("order", order.ID),
				slog.String("status", string(payment.Status)))
			return nil
		}
		if cb.Outcome == model.PaymentStatusSuccess {
			if err := u.machine.Transition(ctx, order, model.OrderStatusConfirmed, box); err != nil {
				return err
			}
			if err := u.store.Carts().Clear(ctx, order.UserID); err != nil {
				return err
			}
		} else if err := u.machine.Transition(ctx, order, model.OrderStatusCancelled, box); err != nil {
			return err
		}
		outcome = string(cb.Outcome)
		return nil
	})
	if err != nil {
		u.logger.Error("payment callback failed", slog.String("event", cb.EventID), slog.String("error", err.Error()))
		return err
	}

	box.flush(ctx, u.publisher, u.metrics)
	u.metrics.PaymentCallback(strings.ToLower(outcome))
	u.logger.Info("payment callback processed",
		slog.String("event", cb.EventID),
		slog.Int64("order", orderID),
		slog.String("outcome", outcome))
	return nil
}

// findPayment matches by session id first. The order id fallback lets a success
// on a superseded session still settle the order.
func (u *PaymentUseCase) findPayment(ctx context.Context, cb *model.PaymentCallback) (*model.Payment, error) {
	if cb.ProviderRef != "" {
		payment, err := u.store.Payments().GetByProviderRef(ctx, cb.ProviderRef)
		if err == nil || !errors.Is(err, domainErrors.ErrNotFound) {
			return payment, err
		}
	}
	if cb.OrderID > 0 {
		return u.store.Payments().GetByOrderID(ctx, cb.OrderID)
	}
	return nil, domainErrors.ErrNotFound
}
