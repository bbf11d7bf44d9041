package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/domain/model"
	pkgAuth "github.com/polkiloo/gopherfood/internal/pkg/auth"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

// FacadeParams lists the use cases behind the HTTP facade.
type FacadeParams struct {
	fx.In

	Tokens     pkgAuth.Strategy
	Orders     *usecase.OrderUseCase
	Kitchen    *usecase.KitchenUseCase
	Payments   *usecase.PaymentUseCase
	Promotions *usecase.PromotionUseCase
	Shipping   *usecase.ShippingUseCase
}

// FoodFacade exposes the use cases to transport adapters.
type FoodFacade struct {
	tokens     pkgAuth.Strategy
	orders     *usecase.OrderUseCase
	kitchen    *usecase.KitchenUseCase
	payments   *usecase.PaymentUseCase
	promotions *usecase.PromotionUseCase
	shipping   *usecase.ShippingUseCase
}

func NewFoodFacade(p FacadeParams) *FoodFacade {
	return &FoodFacade{
		tokens:     p.Tokens,
		orders:     p.Orders,
		kitchen:    p.Kitchen,
		payments:   p.Payments,
		promotions: p.Promotions,
		shipping:   p.Shipping,
	}
}

func (f *FoodFacade) ParseToken(token string) (model.Principal, error) {
	return f.tokens.ParseToken(token)
}

func (f *FoodFacade) PlaceOrder(ctx context.Context, cmd usecase.PlaceOrderCommand) (*model.Order, error) {
	return f.orders.Place(ctx, cmd)
}

func (f *FoodFacade) Order(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	return f.orders.Get(ctx, p, orderID)
}

func (f *FoodFacade) MyOrders(ctx context.Context, p model.Principal) ([]model.Order, error) {
	return f.orders.ListMine(ctx, p)
}

func (f *FoodFacade) AllOrders(ctx context.Context, p model.Principal, page, size int) ([]model.Order, error) {
	return f.orders.ListAll(ctx, p, page, size)
}

func (f *FoodFacade) UpdateOrderStatus(ctx context.Context, p model.Principal, orderID int64, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, p, orderID, status)
}

func (f *FoodFacade) CancelOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	return f.orders.Cancel(ctx, p, orderID)
}

func (f *FoodFacade) KitchenQueue(ctx context.Context, p model.Principal) ([]model.Order, error) {
	return f.kitchen.Queue(ctx, p)
}

func (f *FoodFacade) KitchenAggregate(ctx context.Context, p model.Principal) ([]usecase.AggregatedItem, error) {
	return f.kitchen.AggregatedItems(ctx, p)
}

func (f *FoodFacade) UpdateItemStatus(ctx context.Context, p model.Principal, itemID int64, status model.ItemStatus) (*model.Order, error) {
	return f.kitchen.UpdateItemStatus(ctx, p, itemID, status)
}

func (f *FoodFacade) ClaimOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	return f.kitchen.ClaimOrder(ctx, p, orderID)
}

func (f *FoodFacade) FinishOrder(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	return f.kitchen.FinishOrder(ctx, p, orderID)
}

func (f *FoodFacade) CreatePaymentLink(ctx context.Context, p model.Principal, orderID int64) (string, error) {
	return f.payments.CreatePaymentLink(ctx, p, orderID)
}

func (f *FoodFacade) HandlePaymentCallback(ctx context.Context, payload []byte, signature string) error {
	return f.payments.HandleCallback(ctx, payload, signature)
}

func (f *FoodFacade) PreviewDiscount(ctx context.Context, code string, lines []model.OrderLine) (usecase.DiscountResult, error) {
	return f.promotions.Preview(ctx, code, lines)
}

func (f *FoodFacade) Promotions(ctx context.Context, p model.Principal) ([]model.Promotion, error) {
	return f.promotions.List(ctx, p)
}

func (f *FoodFacade) Promotion(ctx context.Context, p model.Principal, id int64) (*model.Promotion, error) {
	return f.promotions.Get(ctx, p, id)
}

func (f *FoodFacade) CreatePromotion(ctx context.Context, p model.Principal, promo model.Promotion) (*model.Promotion, error) {
	return f.promotions.Create(ctx, p, promo)
}

func (f *FoodFacade) UpdatePromotion(ctx context.Context, p model.Principal, id int64, update model.PromotionUpdate) (*model.Promotion, error) {
	return f.promotions.Update(ctx, p, id, update)
}

func (f *FoodFacade) DeletePromotion(ctx context.Context, p model.Principal, id int64) error {
	return f.promotions.Delete(ctx, p, id)
}

func (f *FoodFacade) DefaultShipping(ctx context.Context, userID int64) (*model.ShippingInfo, error) {
	return f.shipping.GetDefault(ctx, userID)
}

func (f *FoodFacade) SetDefaultShipping(ctx context.Context, userID int64, address model.ShippingAddress) (*model.ShippingInfo, error) {
	return f.shipping.SetDefault(ctx, userID, address)
}
