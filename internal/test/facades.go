package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn  func(context.Context, usecase.PlaceOrderCommand) (*model.Order, error)
	GetFn    func(context.Context, model.Principal, int64) (*model.Order, error)
	MineFn   func(context.Context, model.Principal) ([]model.Order, error)
	AllFn    func(context.Context, model.Principal, int, int) ([]model.Order, error)
	StatusFn func(context.Context, model.Principal, int64, model.OrderStatus) (*model.Order, error)
	CancelFn func(context.Context, model.Principal, int64) (*model.Order, error)
}

// PlaceOrder delegates to provided function or returns a pending order.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, cmd usecase.PlaceOrderCommand) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, cmd)
	}
	return &model.Order{ID: 1, UserID: cmd.UserID, Status: model.OrderStatusPending, PaymentMethod: cmd.PaymentMethod}, nil
}

// Order returns the configured order.
func (s OrderFacadeStub) Order(ctx context.Context, p model.Principal, id int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, p, id)
	}
	return &model.Order{ID: id, UserID: p.UserID, Status: model.OrderStatusPending}, nil
}

// MyOrders returns the caller's orders.
func (s OrderFacadeStub) MyOrders(ctx context.Context, p model.Principal) ([]model.Order, error) {
	if s.MineFn != nil {
		return s.MineFn(ctx, p)
	}
	return []model.Order{{ID: 1, UserID: p.UserID, Status: model.OrderStatusPending}}, nil
}

// AllOrders returns a page of orders.
func (s OrderFacadeStub) AllOrders(ctx context.Context, p model.Principal, page, size int) ([]model.Order, error) {
	if s.AllFn != nil {
		return s.AllFn(ctx, p, page, size)
	}
	return nil, nil
}

// UpdateOrderStatus applies the configured transition.
func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, p model.Principal, id int64, status model.OrderStatus) (*model.Order, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, p, id, status)
	}
	return &model.Order{ID: id, Status: status}, nil
}

// CancelOrder cancels the order.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, p model.Principal, id int64) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, p, id)
	}
	return &model.Order{ID: id, UserID: p.UserID, Status: model.OrderStatusCancelled}, nil
}

// KitchenFacadeStub simulates kitchen operations.
type KitchenFacadeStub struct {
	QueueFn     func(context.Context, model.Principal) ([]model.Order, error)
	AggregateFn func(context.Context, model.Principal) ([]usecase.AggregatedItem, error)
	ItemFn      func(context.Context, model.Principal, int64, model.ItemStatus) (*model.Order, error)
	ClaimFn     func(context.Context, model.Principal, int64) (*model.Order, error)
	FinishFn    func(context.Context, model.Principal, int64) (*model.Order, error)
}

// KitchenQueue returns orders waiting for the kitchen.
func (s KitchenFacadeStub) KitchenQueue(ctx context.Context, p model.Principal) ([]model.Order, error) {
	if s.QueueFn != nil {
		return s.QueueFn(ctx, p)
	}
	return []model.Order{{ID: 1, Status: model.OrderStatusConfirmed}}, nil
}

// KitchenAggregate returns per-product amounts to cook.
func (s KitchenFacadeStub) KitchenAggregate(ctx context.Context, p model.Principal) ([]usecase.AggregatedItem, error) {
	if s.AggregateFn != nil {
		return s.AggregateFn(ctx, p)
	}
	return []usecase.AggregatedItem{{ProductID: 1, ProductName: "pho", Pending: 2}}, nil
}

// UpdateItemStatus moves an item along the kitchen workflow.
func (s KitchenFacadeStub) UpdateItemStatus(ctx context.Context, p model.Principal, itemID int64, status model.ItemStatus) (*model.Order, error) {
	if s.ItemFn != nil {
		return s.ItemFn(ctx, p, itemID, status)
	}
	return &model.Order{ID: 1, Status: model.OrderStatusPreparing, Items: []model.OrderItem{{ID: itemID, Status: status}}}, nil
}

// ClaimOrder claims all pending items of an order.
func (s KitchenFacadeStub) ClaimOrder(ctx context.Context, p model.Principal, id int64) (*model.Order, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, p, id)
	}
	return &model.Order{ID: id, Status: model.OrderStatusPreparing}, nil
}

// FinishOrder marks cooking items of an order as done.
func (s KitchenFacadeStub) FinishOrder(ctx context.Context, p model.Principal, id int64) (*model.Order, error) {
	if s.FinishFn != nil {
		return s.FinishFn(ctx, p, id)
	}
	return &model.Order{ID: id, Status: model.OrderStatusPreparing}, nil
}

// PaymentFacadeStub simulates payment link creation and callbacks.
type PaymentFacadeStub struct {
	LinkFn     func(context.Context, model.Principal, int64) (string, error)
	CallbackFn func(context.Context, []byte, string) error
}

// CreatePaymentLink returns a checkout url.
func (s PaymentFacadeStub) CreatePaymentLink(ctx context.Context, p model.Principal, orderID int64) (string, error) {
	if s.LinkFn != nil {
		return s.LinkFn(ctx, p, orderID)
	}
	return "https://checkout.example/session", nil
}

// HandlePaymentCallback accepts every callback unless overridden.
func (s PaymentFacadeStub) HandlePaymentCallback(ctx context.Context, payload []byte, signature string) error {
	if s.CallbackFn != nil {
		return s.CallbackFn(ctx, payload, signature)
	}
	return nil
}

// PromotionFacadeStub simulates promotion previews and administration.
type PromotionFacadeStub struct {
	PreviewFn func(context.Context, string, []model.OrderLine) (usecase.DiscountResult, error)
	ListFn    func(context.Context, model.Principal) ([]model.Promotion, error)
	GetFn     func(context.Context, model.Principal, int64) (*model.Promotion, error)
	CreateFn  func(context.Context, model.Principal, model.Promotion) (*model.Promotion, error)
	UpdateFn  func(context.Context, model.Principal, int64, model.PromotionUpdate) (*model.Promotion, error)
	DeleteFn  func(context.Context, model.Principal, int64) error
}

// PreviewDiscount returns a zero discount unless overridden.
func (s PromotionFacadeStub) PreviewDiscount(ctx context.Context, code string, lines []model.OrderLine) (usecase.DiscountResult, error) {
	if s.PreviewFn != nil {
		return s.PreviewFn(ctx, code, lines)
	}
	return usecase.DiscountResult{Amount: decimal.Zero, Message: "no discount"}, nil
}

// Promotions lists stored promotions.
func (s PromotionFacadeStub) Promotions(ctx context.Context, p model.Principal) ([]model.Promotion, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, p)
	}
	return nil, nil
}

// Promotion returns a single promotion.
func (s PromotionFacadeStub) Promotion(ctx context.Context, p model.Principal, id int64) (*model.Promotion, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, p, id)
	}
	return nil, domainErrors.PromotionNotFound(id)
}

// CreatePromotion echoes the promotion with an id.
func (s PromotionFacadeStub) CreatePromotion(ctx context.Context, p model.Principal, promo model.Promotion) (*model.Promotion, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, p, promo)
	}
	promo.ID = 1
	return &promo, nil
}

// UpdatePromotion applies the update to an empty promotion.
func (s PromotionFacadeStub) UpdatePromotion(ctx context.Context, p model.Principal, id int64, update model.PromotionUpdate) (*model.Promotion, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, p, id, update)
	}
	promo := &model.Promotion{ID: id}
	update.Apply(promo)
	return promo, nil
}

// DeletePromotion removes a promotion.
func (s PromotionFacadeStub) DeletePromotion(ctx context.Context, p model.Principal, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, p, id)
	}
	return nil
}

// ShippingFacadeStub simulates default address storage.
type ShippingFacadeStub struct {
	GetFn func(context.Context, int64) (*model.ShippingInfo, error)
	SetFn func(context.Context, int64, model.ShippingAddress) (*model.ShippingInfo, error)
}

// DefaultShipping returns the stored default address.
func (s ShippingFacadeStub) DefaultShipping(ctx context.Context, userID int64) (*model.ShippingInfo, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, userID)
	}
	return nil, domainErrors.New(domainErrors.KindNotFound, "SHIPPING_NOT_FOUND", "no default shipping address")
}

// SetDefaultShipping stores the address.
func (s ShippingFacadeStub) SetDefaultShipping(ctx context.Context, userID int64, addr model.ShippingAddress) (*model.ShippingInfo, error) {
	if s.SetFn != nil {
		return s.SetFn(ctx, userID, addr)
	}
	return &model.ShippingInfo{UserID: userID, ShippingAddress: addr, UpdatedAt: time.Unix(0, 0).UTC()}, nil
}

// FoodFacadeStub aggregates facade dependencies for HTTP layer tests.
type FoodFacadeStub struct {
	TokenParserStub
	OrderFacadeStub
	KitchenFacadeStub
	PaymentFacadeStub
	PromotionFacadeStub
	ShippingFacadeStub
}

// SweeperStub mimics the order operations used by the pending order sweeper.
type SweeperStub struct {
	Batches    [][]int64
	ExpireFn   func(context.Context, int64, time.Time) (bool, error)
	Expired    []int64
	Cutoffs    []time.Time
	mu         sync.Mutex
	candidates int
}

// StaleCandidates returns the configured batches in order, then nothing.
func (s *SweeperStub) StaleCandidates(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cutoffs = append(s.Cutoffs, cutoff)
	if s.candidates < len(s.Batches) {
		batch := s.Batches[s.candidates]
		s.candidates++
		if len(batch) > limit {
			batch = batch[:limit]
		}
		return batch, nil
	}
	return nil, nil
}

// ExpireStale records the expired order.
func (s *SweeperStub) ExpireStale(ctx context.Context, id int64, cutoff time.Time) (bool, error) {
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, id, cutoff)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Expired = append(s.Expired, id)
	return true, nil
}

// Lock exposes internal mutex for external synchronization.
func (s *SweeperStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *SweeperStub) Unlock() { s.mu.Unlock() }

// ExpiredIDs returns a copy of the expired order ids.
func (s *SweeperStub) ExpiredIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.Expired...)
}
