package handlers

import (
	"context"

	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/server/http/middleware"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, cmd usecase.PlaceOrderCommand) (*model.Order, error)
	Order(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error)
	MyOrders(ctx context.Context, p model.Principal) ([]model.Order, error)
	AllOrders(ctx context.Context, p model.Principal, page, size int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, p model.Principal, orderID int64, status model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error)
}

// KitchenFacade covers the cooking workflow.
type KitchenFacade interface {
	KitchenQueue(ctx context.Context, p model.Principal) ([]model.Order, error)
	KitchenAggregate(ctx context.Context, p model.Principal) ([]usecase.AggregatedItem, error)
	UpdateItemStatus(ctx context.Context, p model.Principal, itemID int64, status model.ItemStatus) (*model.Order, error)
	ClaimOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error)
	FinishOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error)
}

// PaymentFacade covers payment links and processor callbacks.
type PaymentFacade interface {
	CreatePaymentLink(ctx context.Context, p model.Principal, orderID int64) (string, error)
	HandlePaymentCallback(ctx context.Context, payload []byte, signature string) error
}

// PromotionFacade covers discount previews and promotion administration.
type PromotionFacade interface {
	PreviewDiscount(ctx context.Context, code string, lines []model.OrderLine) (usecase.DiscountResult, error)
	Promotions(ctx context.Context, p model.Principal) ([]model.Promotion, error)
	Promotion(ctx context.Context, p model.Principal, id int64) (*model.Promotion, error)
	CreatePromotion(ctx context.Context, p model.Principal, promo model.Promotion) (*model.Promotion, error)
	UpdatePromotion(ctx context.Context, p model.Principal, id int64, update model.PromotionUpdate) (*model.Promotion, error)
	DeletePromotion(ctx context.Context, p model.Principal, id int64) error
}

// ShippingFacade covers the default delivery address.
type ShippingFacade interface {
	DefaultShipping(ctx context.Context, userID int64) (*model.ShippingInfo, error)
	SetDefaultShipping(ctx context.Context, userID int64, address model.ShippingAddress) (*model.ShippingInfo, error)
}

// FoodFacade aggregates the full set of operations used across handlers.
type FoodFacade interface {
	middleware.TokenParser
	OrderFacade
	KitchenFacade
	PaymentFacade
	PromotionFacade
	ShippingFacade
}
