package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PlaceOrderCommand carries a checkout request.
type PlaceOrderCommand struct {
	UserID        int64
	Lines         []model.OrderLine
	PromoCode     string
	Shipping      model.ShippingAddress
	PaymentMethod model.PaymentMethod
}

// OrderParams lists OrderUseCase dependencies.
type OrderParams struct {
	fx.In

	Store     repository.Store
	Machine   *StatusMachine
	Discounts *DiscountEvaluator
	Loyalty   *LoyaltyPolicy
	Shipping  *ShippingUseCase
	Logger    *slog.Logger
	Publisher EventPublisher `optional:"true"`
	Mailer    OrderMailer    `optional:"true"`
	Metrics   Recorder       `optional:"true"`
}

// OrderUseCase encapsulates order placement and lifecycle logic.
type OrderUseCase struct {
	store     repository.Store
	machine   *StatusMachine
	discounts *DiscountEvaluator
	loyalty   *LoyaltyPolicy
	shipping  *ShippingUseCase
	publisher EventPublisher
	mailer    OrderMailer
	metrics   Recorder
	logger    *slog.Logger

	mails sync.WaitGroup
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(p OrderParams) *OrderUseCase {
	return &OrderUseCase{
		store:     p.Store,
		machine:   p.Machine,
		discounts: p.Discounts,
		loyalty:   p.Loyalty,
		shipping:  p.Shipping,
		publisher: publisherOrNop(p.Publisher),
		mailer:    p.Mailer,
		metrics:   recorderOrNop(p.Metrics),
		logger:    p.Logger,
	}
}

// Place prices the requested lines, applies discounts and commits the order
// together with its stock decrements.
func (u *OrderUseCase) Place(ctx context.Context, cmd PlaceOrderCommand) (*model.Order, error) {
	method, err := validatePlacement(cmd)
	if err != nil {
		return nil, err
	}

	user, err := u.store.Users().GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	lines := mergeLines(cmd.Lines)
	priced, err := u.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:        cmd.UserID,
		Status:        model.OrderStatusPending,
		PaymentMethod: method,
		Subtotal:      decimal.Zero,
	}
	for _, l := range priced {
		order.Subtotal = order.Subtotal.Add(l.total())
		order.Items = append(order.Items, model.OrderItem{
			ProductID:   l.product.ID,
			ProductName: l.product.Name,
			Quantity:    l.quantity,
			UnitPrice:   l.product.Price,
			Status:      model.ItemStatusPending,
		})
	}

	promo := noDiscount(MsgCodeRequired)
	if strings.TrimSpace(cmd.PromoCode) != "" {
		promo, err = u.discounts.evaluate(ctx, cmd.PromoCode, priced)
		if err != nil {
			return nil, err
		}
	}
	if promo.Promotion != nil && promo.Promotion.Code != nil {
		code := *promo.Promotion.Code
		order.PromotionCode = &code
	}
	order.PromoDiscount = promo.Amount
	order.LoyaltyDiscount = u.loyalty.Discount(user.Points, order.Subtotal)
	order.Discount = decimal.Min(order.Subtotal, order.PromoDiscount.Add(order.LoyaltyDiscount))
	order.Total = order.Subtotal.Sub(order.Discount)

	err = u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		address, err := u.shipping.resolve(ctx, cmd.UserID, cmd.Shipping)
		if err != nil {
			return err
		}
		order.Shipping = address

		if err := u.store.Orders().Create(ctx, order); err != nil {
			return err
		}
		for _, l := range priced {
			if err := u.store.Products().DecrementStock(ctx, l.product.ID, l.quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if promo.Promotion != nil {
		if err := u.store.Promotions().IncrementUsage(ctx, promo.Promotion.ID); err != nil {
			u.logger.Warn("promotion usage increment failed", slog.Int64("order", order.ID), slog.String("error", err.Error()))
		}
	}
	if err := u.store.Carts().Clear(ctx, cmd.UserID); err != nil {
		u.logger.Warn("cart clear failed", slog.Int64("user", cmd.UserID), slog.String("error", err.Error()))
	}
	u.publisher.Publish(ctx, model.NewOrderEvent(model.EventNewOrder, order))
	u.metrics.OrderPlaced(method)
	u.sendConfirmation(ctx, *user, *order)

	u.logger.Info("order placed",
		slog.Int64("order", order.ID),
		slog.Int64("user", order.UserID),
		slog.String("total", order.Total.String()))
	return order, nil
}

func validatePlacement(cmd PlaceOrderCommand) (model.PaymentMethod, error) {
	if len(cmd.Lines) == 0 {
		return "", domainErrors.Validation("order must contain at least one item")
	}
	for _, l := range cmd.Lines {
		if l.ProductID <= 0 {
			return "", domainErrors.Validation("product id is required")
		}
		if l.Quantity <= 0 {
			return "", domainErrors.Validation("quantity must be positive")
		}
	}
	return model.ParsePaymentMethod(string(cmd.PaymentMethod))
}

func (u *OrderUseCase) priceLines(ctx context.Context, lines []model.OrderLine) ([]pricedLine, error) {
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := u.store.Products().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	priced := make([]pricedLine, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		switch {
		case !ok:
			return nil, domainErrors.ProductNotFound(l.ProductID)
		case !p.Active:
			return nil, domainErrors.ProductUnavailable(l.ProductID)
		case p.Stock < l.Quantity:
			return nil, domainErrors.OutOfStock(l.ProductID)
		}
		priced = append(priced, pricedLine{product: p, quantity: l.Quantity})
	}
	return priced, nil
}

func (u *OrderUseCase) sendConfirmation(ctx context.Context, user model.User, order model.Order) {
	if u.mailer == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	u.mails.Add(1)
	go func() {
		defer u.mails.Done()
		if err := u.mailer.SendOrderConfirmation(ctx, user, order); err != nil {
			u.logger.Warn("order confirmation email failed", slog.Int64("order", order.ID), slog.String("error", err.Error()))
		}
	}()
}

// Drain waits for in-flight confirmation emails or until ctx is done.
func (u *OrderUseCase) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.mails.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns an order visible to the principal.
func (u *OrderUseCase) Get(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	order, err := u.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(p.UserID) && !p.IsAdmin() {
		return nil, domainErrors.Forbidden("order belongs to another user")
	}
	return order, nil
}

// ListMine returns the principal's orders, newest first.
func (u *OrderUseCase) ListMine(ctx context.Context, p model.Principal) ([]model.Order, error) {
	return u.store.Orders().ListByUser(ctx, p.UserID)
}

// ListAll pages through every order. Pages are zero-based.
func (u *OrderUseCase) ListAll(ctx context.Context, p model.Principal, page, size int) ([]model.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return u.store.Orders().List(ctx, size, page*size)
}

// UpdateStatus moves an order through the state machine on behalf of an admin.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, p model.Principal, orderID int64, to model.OrderStatus) (*model.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, domainErrors.Validation("unknown order status " + string(to))
	}

	box := &outbox{}
	var result *model.Order
	err := u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := u.store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderStatusPending && to == model.OrderStatusCancelled {
			err = u.cancelPending(ctx, order, box)
		} else {
			err = u.machine.Transition(ctx, order, to, box)
		}
		if err != nil {
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

// Cancel lets the owner withdraw an order that is still PENDING.
func (u *OrderUseCase) Cancel(ctx context.Context, p model.Principal, orderID int64) (*model.Order, error) {
	box := &outbox{}
	var result *model.Order
	err := u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := u.store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsOwnedBy(p.UserID) {
			return domainErrors.Forbidden("order belongs to another user")
		}
		if order.Status != model.OrderStatusPending {
			return domainErrors.OrderNotPending(orderID)
		}
		if err := u.cancelPending(ctx, order, box); err != nil {
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

// StaleCandidates lists ONLINE orders still PENDING that were placed before cutoff.
func (u *OrderUseCase) StaleCandidates(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	return u.store.Orders().SelectStalePending(ctx, model.PaymentMethodOnline, cutoff, limit)
}

// ExpireStale cancels the order when it is still an unpaid ONLINE order placed
// before cutoff. It reports whether the order was cancelled.
func (u *OrderUseCase) ExpireStale(ctx context.Context, orderID int64, cutoff time.Time) (bool, error) {
	box := &outbox{}
	expired := false
	err := u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := u.store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending ||
			order.PaymentMethod != model.PaymentMethodOnline ||
			!order.CreatedAt.Before(cutoff) {
			return nil
		}
		if err := u.cancelPending(ctx, order, box); err != nil {
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}
	box.flush(ctx, u.publisher, u.metrics)
	return expired, nil
}

// cancelPending cancels a PENDING order and voids its open payment link.
func (u *OrderUseCase) cancelPending(ctx context.Context, order *model.Order, box *outbox) error {
	if err := u.machine.Transition(ctx, order, model.OrderStatusCancelled, box); err != nil {
		return err
	}
	payment, err := u.store.Payments().GetByOrderID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	_, err = u.store.Payments().Settle(ctx, payment.ID, model.PaymentStatusCancelled, "")
	return err
}
