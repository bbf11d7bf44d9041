package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

// Discount evaluation outcomes.
const (
	MsgCodeRequired   = "Code required"
	MsgInvalidCode    = "Invalid code"
	MsgInactive       = "Code is inactive"
	MsgNotStarted     = "Code not yet active"
	MsgExpired        = "Code expired"
	MsgUsageExhausted = "Code usage limit reached"
	MsgMinimumNotMet  = "Min order total not met"
	MsgNotApplicable  = "Code not applicable to these items"
	MsgAppliedSuccess = "Applied successfully"
)

var hundred = decimal.NewFromInt(100)

// DiscountResult is the outcome of evaluating a promotion code.
// Promotion is nil whenever Amount is zero.
type DiscountResult struct {
	Amount    decimal.Decimal
	Promotion *model.Promotion
	Message   string
}

func noDiscount(message string) DiscountResult {
	return DiscountResult{Amount: decimal.Zero, Message: message}
}

type pricedLine struct {
	product  model.Product
	quantity int
}

func (l pricedLine) total() decimal.Decimal {
	return l.product.Price.Mul(decimal.NewFromInt(int64(l.quantity)))
}

// DiscountEvaluator computes promotion discounts for a set of lines.
type DiscountEvaluator struct {
	store repository.Store
	now   func() time.Time
}

// NewDiscountEvaluator constructs DiscountEvaluator.
func NewDiscountEvaluator(store repository.Store) *DiscountEvaluator {
	return &DiscountEvaluator{store: store, now: time.Now}
}

// Preview evaluates code against lines priced at current catalog prices.
// Unknown products are skipped. Only store failures are returned as errors.
func (e *DiscountEvaluator) Preview(ctx context.Context, code string, lines []model.OrderLine) (DiscountResult, error) {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := e.store.Products().GetByIDs(ctx, ids)
	if err != nil {
		return DiscountResult{}, err
	}

	priced := make([]pricedLine, 0, len(lines))
	for _, l := range mergeLines(lines) {
		p, ok := products[l.ProductID]
		if !ok || l.Quantity <= 0 {
			continue
		}
		priced = append(priced, pricedLine{product: p, quantity: l.Quantity})
	}
	return e.evaluate(ctx, code, priced)
}

func (e *DiscountEvaluator) evaluate(ctx context.Context, code string, lines []pricedLine) (DiscountResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return noDiscount(MsgCodeRequired), nil
	}

	promo, err := e.store.Promotions().GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return noDiscount(MsgInvalidCode), nil
		}
		return DiscountResult{}, err
	}

	now := e.now()
	switch {
	case !promo.Active:
		return noDiscount(MsgInactive), nil
	case promo.StartAt != nil && now.Before(*promo.StartAt):
		return noDiscount(MsgNotStarted), nil
	case promo.EndAt != nil && now.After(*promo.EndAt):
		return noDiscount(MsgExpired), nil
	case promo.Exhausted():
		return noDiscount(MsgUsageExhausted), nil
	}

	subtotal, eligible := decimal.Zero, decimal.Zero
	for _, l := range lines {
		lineTotal := l.total()
		subtotal = subtotal.Add(lineTotal)
		if promo.Covers(l.product) {
			eligible = eligible.Add(lineTotal)
		}
	}

	if promo.MinOrderTotal != nil && subtotal.LessThan(*promo.MinOrderTotal) {
		return noDiscount(MsgMinimumNotMet), nil
	}
	if !eligible.IsPositive() {
		return noDiscount(MsgNotApplicable), nil
	}

	var amount decimal.Decimal
	switch promo.Type {
	case model.PromotionTypePercent:
		amount = eligible.Mul(promo.Value).Div(hundred).Round(2)
	case model.PromotionTypeFixed:
		amount = decimal.Min(promo.Value, eligible)
	default:
		return noDiscount(MsgNotApplicable), nil
	}
	amount = decimal.Min(amount, subtotal)
	if !amount.IsPositive() {
		return noDiscount(MsgNotApplicable), nil
	}

	return DiscountResult{Amount: amount, Promotion: promo, Message: MsgAppliedSuccess}, nil
}

// mergeLines sums quantities of repeated products, keeping first-seen order.
func mergeLines(lines []model.OrderLine) []model.OrderLine {
	index := make(map[int64]int, len(lines))
	merged := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}
