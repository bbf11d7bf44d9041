package usecase

import (
	"context"
	"log/slog"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

type statusChange struct {
	from, to model.OrderStatus
}

// outbox collects effects that must only be observed after commit.
type outbox struct {
	events  []model.Event
	changes []statusChange
}

func (b *outbox) add(eventType model.EventType, order *model.Order, itemID *int64) {
	ev := model.NewOrderEvent(eventType, order)
	ev.ItemID = itemID
	b.events = append(b.events, ev)
}

func (b *outbox) flush(ctx context.Context, publisher EventPublisher, metrics Recorder) {
	for _, c := range b.changes {
		metrics.StatusChanged(c.from, c.to)
	}
	if len(b.events) > 0 {
		publisher.Publish(ctx, b.events...)
	}
	b.events, b.changes = nil, nil
}

// StatusMachine applies order status transitions and their side effects.
// Callers hold the order row lock inside a transaction.
type StatusMachine struct {
	store   repository.Store
	loyalty *LoyaltyPolicy
	logger  *slog.Logger
}

// NewStatusMachine constructs StatusMachine.
func NewStatusMachine(store repository.Store, loyalty *LoyaltyPolicy, logger *slog.Logger) *StatusMachine {
	return &StatusMachine{store: store, loyalty: loyalty, logger: logger}
}

// Transition moves order to the target status. Requesting the current status is a no-op.
func (m *StatusMachine) Transition(ctx context.Context, order *model.Order, to model.OrderStatus, box *outbox) error {
	from := order.Status
	if from == to {
		return nil
	}
	if !from.CanTransitionTo(to) {
		return domainErrors.InvalidTransition(string(from), string(to))
	}

	if from == model.OrderStatusPending && to == model.OrderStatusCancelled {
		if err := m.restoreStock(ctx, order); err != nil {
			return err
		}
	}
	if to == model.OrderStatusDone {
		if points := m.loyalty.PointsFor(order.Total); points > 0 {
			if err := m.store.Users().AddPoints(ctx, order.UserID, points); err != nil {
				return err
			}
		}
	}

	if err := m.store.Orders().UpdateStatus(ctx, order.ID, to); err != nil {
		return err
	}
	order.Status = to

	box.changes = append(box.changes, statusChange{from: from, to: to})
	if from == model.OrderStatusPending && to == model.OrderStatusConfirmed {
		box.add(model.EventKitchenNewOrder, order, nil)
	}
	return nil
}

// Advance moves order towards the status derived from its items. A CONFIRMED
// order whose items are all done passes through PREPARING. Targets that are
// not reachable from the current status leave the order unchanged.
func (m *StatusMachine) Advance(ctx context.Context, order *model.Order, target model.OrderStatus, box *outbox) error {
	if order.Status == target {
		return nil
	}
	if order.Status == model.OrderStatusConfirmed && target == model.OrderStatusDelivering {
		if err := m.Transition(ctx, order, model.OrderStatusPreparing, box); err != nil {
			return err
		}
	}
	if !order.Status.CanTransitionTo(target) {
		m.logger.Info("aggregated status not reachable",
			slog.Int64("order", order.ID),
			slog.String("from", string(order.Status)),
			slog.String("to", string(target)))
		return nil
	}
	return m.Transition(ctx, order, target, box)
}

func (m *StatusMachine) restoreStock(ctx context.Context, order *model.Order) error {
	for _, item := range order.Items {
		if err := m.store.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
