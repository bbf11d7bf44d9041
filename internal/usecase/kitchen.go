package usecase

import (
	"context"
	"log/slog"
	"sort"

	"go.uber.org/fx"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

var kitchenStatuses = []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusPreparing}

// AggregatedItem is the amount of one product still to be cooked across the queue.
type AggregatedItem struct {
	ProductID   int64
	ProductName string
	Pending     int
	Cooking     int
}

// KitchenParams lists KitchenUseCase dependencies.
type KitchenParams struct {
	fx.In

	Store     repository.Store
	Machine   *StatusMachine
	Logger    *slog.Logger
	Publisher EventPublisher `optional:"true"`
	Metrics   Recorder       `optional:"true"`
}

// KitchenUseCase drives the per-item cooking workflow.
type KitchenUseCase struct {
	store     repository.Store
	machine   *StatusMachine
	publisher EventPublisher
	metrics   Recorder
	logger    *slog.Logger
}

// NewKitchenUseCase constructs KitchenUseCase.
func NewKitchenUseCase(p KitchenParams) *KitchenUseCase {
	return &KitchenUseCase{
		store:     p.Store,
		machine:   p.Machine,
		publisher: publisherOrNop(p.Publisher),
		metrics:   recorderOrNop(p.Metrics),
		logger:    p.Logger,
	}
}

func ownedBy(item *model.OrderItem, userID int64) bool {
	return item.ChefID != nil && *item.ChefID == userID
}

// UpdateItemStatus claims, unclaims or finishes one item and re-derives the order status.
func (u *KitchenUseCase) UpdateItemStatus(ctx context.Context, p model.Principal, itemID int64, to model.ItemStatus) (*model.Order, error) {
	if err := requireCook(p); err != nil {
		return nil, err
	}

	box := &outbox{}
	var result *model.Order
	err := u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		ref, err := u.store.Orders().GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		order, err := u.store.Orders().GetForUpdate(ctx, ref.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.IsKitchenActive() {
			return domainErrors.OrderNotInKitchen(order.ID)
		}
		item, ok := order.Item(itemID)
		if !ok {
			return domainErrors.OrderItemNotFound(itemID)
		}

		switch {
		case item.Status == to:
			if to == model.ItemStatusCooking && !ownedBy(item, p.UserID) {
				return domainErrors.AlreadyClaimed(itemID)
			}
			result = order
			return nil
		case !item.Status.CanTransitionTo(to):
			return domainErrors.InvalidTransition(string(item.Status), string(to))
		case to == model.ItemStatusCooking:
			claimed, err := u.store.Orders().ClaimItem(ctx, itemID, p.UserID)
			if err != nil {
				return err
			}
			u.metrics.ItemClaim(claimed)
			if !claimed {
				return domainErrors.AlreadyClaimed(itemID)
			}
			chef := p.UserID
			item.ChefID = &chef
		default:
			if !ownedBy(item, p.UserID) && !p.IsAdmin() {
				return domainErrors.Forbidden("item is assigned to another cook")
			}
			if to == model.ItemStatusPending {
				item.ChefID = nil
			}
			if err := u.store.Orders().UpdateItem(ctx, itemID, to, item.ChefID); err != nil {
				return err
			}
		}
		item.Status = to

		box.add(model.EventKitchenUpdate, order, &itemID)
		if err := u.machine.Advance(ctx, order, model.AggregateOrderStatus(order.Items), box); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, u.publisher, u.metrics)
	return result, nil
}

// ClaimOrder assigns every unowned PENDING item of the order to the cook.
func (u *KitchenUseCase) ClaimOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	return u.bulk(ctx, p, orderID, func(ctx context.Context, order *model.Order) error {
		if _, err := u.store.Orders().ClaimPendingItems(ctx, orderID, p.UserID); err != nil {
			return err
		}
		for i := range order.Items {
			item := &order.Items[i]
			if item.Status == model.ItemStatusPending && item.ChefID == nil {
				chef := p.UserID
				item.Status = model.ItemStatusCooking
				item.ChefID = &chef
			}
		}
		return nil
	})
}

// FinishOrder marks every COOKING item of the order as DONE.
func (u *KitchenUseCase) FinishOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	return u.bulk(ctx, p, orderID, func(ctx context.Context, order *model.Order) error {
		if _, err := u.store.Orders().FinishCookingItems(ctx, orderID); err != nil {
			return err
		}
		for i := range order.Items {
			if order.Items[i].Status == model.ItemStatusCooking {
				order.Items[i].Status = model.ItemStatusDone
			}
		}
		return nil
	})
}

func (u *KitchenUseCase) bulk(ctx context.Context, p model.Principal, orderID int64, apply func(context.Context, *model.Order) error) (*model.Order, error) {
	if err := requireCook(p); err != nil {
		return nil, err
	}

	box := &outbox{}
	var result *model.Order
	err := u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := u.store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.IsKitchenActive() {
			return domainErrors.OrderNotInKitchen(orderID)
		}
		if err := apply(ctx, order); err != nil {
			return err
		}
		box.add(model.EventKitchenUpdate, order, nil)
		if err := u.machine.Advance(ctx, order, model.AggregateOrderStatus(order.Items), box); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, u.publisher, u.metrics)
	return result, nil
}

// Queue returns orders the kitchen is working on, oldest first.
func (u *KitchenUseCase) Queue(ctx context.Context, p model.Principal) ([]model.Order, error) {
	if err := requireCook(p); err != nil {
		return nil, err
	}
	return u.store.Orders().ListByStatuses(ctx, kitchenStatuses)
}

// AggregatedItems sums quantities still to cook per product across the queue.
func (u *KitchenUseCase) AggregatedItems(ctx context.Context, p model.Principal) ([]AggregatedItem, error) {
	orders, err := u.Queue(ctx, p)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]*AggregatedItem)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Status == model.ItemStatusDone {
				continue
			}
			agg, ok := index[item.ProductID]
			if !ok {
				agg = &AggregatedItem{ProductID: item.ProductID, ProductName: item.ProductName}
				index[item.ProductID] = agg
			}
			if item.Status == model.ItemStatusCooking {
				agg.Cooking += item.Quantity
			} else {
				agg.Pending += item.Quantity
			}
		}
	}

	result := make([]AggregatedItem, 0, len(index))
	for _, agg := range index {
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ProductName != result[j].ProductName {
			return result[i].ProductName < result[j].ProductName
		}
		return result[i].ProductID < result[j].ProductID
	})
	return result, nil
}
