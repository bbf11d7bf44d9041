package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

var allStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusConfirmed,
	model.OrderStatusPreparing,
	model.OrderStatusDelivering,
	model.OrderStatusDone,
	model.OrderStatusCancelled,
}

func TestStatusMachineTransitionMatrix(t *testing.T) {
	legal := map[model.OrderStatus][]model.OrderStatus{
		model.OrderStatusPending:    {model.OrderStatusConfirmed, model.OrderStatusCancelled},
		model.OrderStatusConfirmed:  {model.OrderStatusPreparing, model.OrderStatusCancelled},
		model.OrderStatusPreparing:  {model.OrderStatusDelivering, model.OrderStatusDone, model.OrderStatusCancelled},
		model.OrderStatusDelivering: {model.OrderStatusDone, model.OrderStatusCancelled},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			f := newFixture(t)
			stored := f.store.PutOrder(model.Order{UserID: customerID, Status: from, Total: money("0")})
			box := &outbox{}

			err := f.machine.Transition(context.Background(), &stored, to, box)

			allowed := from == to
			for _, s := range legal[from] {
				if s == to {
					allowed = true
				}
			}
			if allowed {
				require.NoErrorf(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, f.store.Order(stored.ID).Status)
			} else {
				require.Truef(t, errors.Is(err, domainErrors.ErrInvalidTransition), "%s -> %s: %v", from, to, err)
				assert.Equal(t, from, f.store.Order(stored.ID).Status)
			}
			if from == to {
				assert.Empty(t, box.changes, "same-state request must not record a change")
				assert.Empty(t, box.events)
			}
		}
	}
}

func TestStatusMachineRejectsConfirmedToDone(t *testing.T) {
	f := newFixture(t)
	order := f.confirmedOrder(t)

	err := f.machine.Transition(context.Background(), &order, model.OrderStatusDone, &outbox{})
	require.Error(t, err)
	requireCode(t, err, "INVALID_TRANSITION")
	assert.Contains(t, err.Error(), "CONFIRMED -> DONE")
	assert.Equal(t, int64(0), f.store.User(customerID).Points)
}

func TestStatusMachineCancelFromPendingRestoresStock(t *testing.T) {
	f := newFixture(t)
	order := f.store.PutOrder(model.Order{
		UserID: customerID,
		Status: model.OrderStatusPending,
		Items: []model.OrderItem{
			{ProductID: burgerID, Quantity: 2, UnitPrice: money("100")},
			{ProductID: saladID, Quantity: 3, UnitPrice: money("50")},
		},
	})

	require.NoError(t, f.machine.Transition(context.Background(), &order, model.OrderStatusCancelled, &outbox{}))
	assert.Equal(t, 7, f.store.Product(burgerID).Stock)
	assert.Equal(t, 13, f.store.Product(saladID).Stock)
}

func TestStatusMachineCancelLaterKeepsStock(t *testing.T) {
	f := newFixture(t)
	order := f.confirmedOrder(t)

	require.NoError(t, f.machine.Transition(context.Background(), &order, model.OrderStatusCancelled, &outbox{}))
	assert.Equal(t, 5, f.store.Product(burgerID).Stock)
}

func TestStatusMachineDoneAccruesPointsOnce(t *testing.T) {
	f := newFixture(t)
	order := f.store.PutOrder(model.Order{UserID: customerID, Status: model.OrderStatusDelivering, Total: money("235000")})
	box := &outbox{}

	require.NoError(t, f.machine.Transition(context.Background(), &order, model.OrderStatusDone, box))
	require.NoError(t, f.machine.Transition(context.Background(), &order, model.OrderStatusDone, box))

	assert.Equal(t, int64(23), f.store.User(customerID).Points)
	assert.Len(t, box.changes, 1)
}

func TestStatusMachineConfirmQueuesKitchenEvent(t *testing.T) {
	f := newFixture(t)
	order := f.store.PutOrder(model.Order{UserID: customerID, Status: model.OrderStatusPending})
	box := &outbox{}

	require.NoError(t, f.machine.Transition(context.Background(), &order, model.OrderStatusConfirmed, box))
	require.Len(t, box.events, 1)
	assert.Equal(t, model.EventKitchenNewOrder, box.events[0].Type)
	assert.Equal(t, order.ID, box.events[0].OrderID)
	assert.Equal(t, 0, f.publisher.count(model.EventKitchenNewOrder), "events wait for flush")

	box.flush(context.Background(), f.publisher, f.metrics)
	assert.Equal(t, 1, f.publisher.count(model.EventKitchenNewOrder))
	assert.Equal(t, 1, f.metrics.transitions(model.OrderStatusConfirmed))
	assert.Empty(t, box.events)
}

func TestStatusMachineAdvance(t *testing.T) {
	t.Run("confirmed passes through preparing", func(t *testing.T) {
		f := newFixture(t)
		order := f.confirmedOrder(t)
		box := &outbox{}

		require.NoError(t, f.machine.Advance(context.Background(), &order, model.OrderStatusDelivering, box))
		assert.Equal(t, model.OrderStatusDelivering, f.store.Order(order.ID).Status)
		assert.Equal(t, []statusChange{
			{from: model.OrderStatusConfirmed, to: model.OrderStatusPreparing},
			{from: model.OrderStatusPreparing, to: model.OrderStatusDelivering},
		}, box.changes)
	})

	t.Run("unreachable target leaves order", func(t *testing.T) {
		f := newFixture(t)
		order := f.store.PutOrder(model.Order{UserID: customerID, Status: model.OrderStatusPreparing})
		box := &outbox{}

		require.NoError(t, f.machine.Advance(context.Background(), &order, model.OrderStatusConfirmed, box))
		assert.Equal(t, model.OrderStatusPreparing, f.store.Order(order.ID).Status)
		assert.Empty(t, box.changes)
	})
}
