package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

// PromotionUseCase administers discount rules and previews codes.
type PromotionUseCase struct {
	store     repository.Store
	discounts *DiscountEvaluator
}

// NewPromotionUseCase constructs PromotionUseCase.
func NewPromotionUseCase(store repository.Store, discounts *DiscountEvaluator) *PromotionUseCase {
	return &PromotionUseCase{store: store, discounts: discounts}
}

// Preview evaluates code against lines without placing an order.
func (u *PromotionUseCase) Preview(ctx context.Context, code string, lines []model.OrderLine) (DiscountResult, error) {
	return u.discounts.Preview(ctx, code, lines)
}

func (u *PromotionUseCase) List(ctx context.Context, p model.Principal) ([]model.Promotion, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return u.store.Promotions().List(ctx)
}

func (u *PromotionUseCase) Get(ctx context.Context, p model.Principal, id int64) (*model.Promotion, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return u.store.Promotions().GetByID(ctx, id)
}

func (u *PromotionUseCase) Create(ctx context.Context, p model.Principal, promo model.Promotion) (*model.Promotion, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	promo.ID = 0
	promo.UsedCount = 0
	normalizePromotion(&promo)
	if err := validatePromotion(&promo); err != nil {
		return nil, err
	}
	if err := u.store.Promotions().Create(ctx, &promo); err != nil {
		return nil, err
	}
	return &promo, nil
}

// Update applies a partial update. Absent fields keep their values.
func (u *PromotionUseCase) Update(ctx context.Context, p model.Principal, id int64, update model.PromotionUpdate) (*model.Promotion, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	var result *model.Promotion
	err := u.store.WithinTransaction(ctx, func(ctx context.Context) error {
		promo, err := u.store.Promotions().GetByID(ctx, id)
		if err != nil {
			return err
		}
		update.Apply(promo)
		normalizePromotion(promo)
		if err := validatePromotion(promo); err != nil {
			return err
		}
		if err := u.store.Promotions().Update(ctx, promo); err != nil {
			return err
		}
		result = promo
		return nil
	})
	return result, err
}

func (u *PromotionUseCase) Delete(ctx context.Context, p model.Principal, id int64) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	return u.store.Promotions().Delete(ctx, id)
}

func normalizePromotion(p *model.Promotion) {
	if p.Code != nil {
		code := strings.TrimSpace(*p.Code)
		if code == "" {
			p.Code = nil
		} else {
			p.Code = &code
		}
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Type = model.PromotionType(strings.ToUpper(string(p.Type)))
	p.Scope = model.PromotionScope(strings.ToUpper(string(p.Scope)))
	if p.Scope == "" {
		p.Scope = model.PromotionScopeAll
	}
	if p.Scope != model.PromotionScopeCategory {
		p.CategoryID = nil
	}
	if p.Scope != model.PromotionScopeProduct {
		p.ProductIDs = nil
	}
}

func validatePromotion(p *model.Promotion) error {
	if p.Name == "" {
		return domainErrors.Validation("promotion name is required")
	}
	switch p.Type {
	case model.PromotionTypePercent:
		if !p.Value.IsPositive() || p.Value.GreaterThan(hundred) {
			return domainErrors.Validation("percent value must be in (0, 100]")
		}
	case model.PromotionTypeFixed:
		if !p.Value.IsPositive() {
			return domainErrors.Validation("fixed value must be positive")
		}
	default:
		return domainErrors.Validation("unknown promotion type " + string(p.Type))
	}
	switch p.Scope {
	case model.PromotionScopeAll:
	case model.PromotionScopeCategory:
		if p.CategoryID == nil {
			return domainErrors.Validation("category scope requires a category")
		}
	case model.PromotionScopeProduct:
		if len(p.ProductIDs) == 0 {
			return domainErrors.Validation("product scope requires at least one product")
		}
	default:
		return domainErrors.Validation("unknown promotion scope " + string(p.Scope))
	}
	if p.MinOrderTotal != nil && p.MinOrderTotal.IsNegative() {
		return domainErrors.Validation("minimum order total must not be negative")
	}
	if p.MaxUses != nil && *p.MaxUses < 0 {
		return domainErrors.Validation("usage cap must not be negative")
	}
	if p.StartAt != nil && p.EndAt != nil && !p.StartAt.Before(*p.EndAt) {
		return domainErrors.Validation("start must be before end")
	}
	return nil
}
