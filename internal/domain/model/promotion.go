package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromotionType selects how the discount value is interpreted.
type PromotionType string

const (
	PromotionTypePercent PromotionType = "PERCENT"
	PromotionTypeFixed   PromotionType = "FIXED"
)

// PromotionScope selects which order lines a promotion covers.
type PromotionScope string

const (
	PromotionScopeAll      PromotionScope = "ALL"
	PromotionScopeCategory PromotionScope = "CATEGORY"
	PromotionScopeProduct  PromotionScope = "PRODUCT"
)

// Promotion is a discount rule. A nil Code means the promotion is not user-facing.
type Promotion struct {
	ID            int64
	Code          *string
	Name          string
	Type          PromotionType
	Value         decimal.Decimal
	MinOrderTotal *decimal.Decimal
	Scope         PromotionScope
	CategoryID    *int64
	ProductIDs    []int64
	Active        bool
	StartAt       *time.Time
	EndAt         *time.Time
	MaxUses       *int
	UsedCount     int
	CreatedAt     time.Time
}

// Covers reports whether product falls inside the promotion scope.
func (p *Promotion) Covers(product Product) bool {
	switch p.Scope {
	case PromotionScopeAll:
		return true
	case PromotionScopeCategory:
		return p.CategoryID != nil && product.CategoryID != nil && *p.CategoryID == *product.CategoryID
	case PromotionScopeProduct:
		for _, id := range p.ProductIDs {
			if id == product.ID {
				return true
			}
		}
	}
	return false
}

// Exhausted reports whether the usage cap has been reached.
func (p *Promotion) Exhausted() bool {
	return p.MaxUses != nil && p.UsedCount >= *p.MaxUses
}

// Optional distinguishes an absent field from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present, explicitly cleared value.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func applyOptional[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

func applyRequired[T any](dst *T, o Optional[T]) {
	if o.Set && o.Value != nil {
		*dst = *o.Value
	}
}

// PromotionUpdate is a partial update. Required fields ignore an explicit null.
type PromotionUpdate struct {
	Code          Optional[string]
	Name          Optional[string]
	Type          Optional[PromotionType]
	Value         Optional[decimal.Decimal]
	MinOrderTotal Optional[decimal.Decimal]
	Scope         Optional[PromotionScope]
	CategoryID    Optional[int64]
	ProductIDs    Optional[[]int64]
	Active        Optional[bool]
	StartAt       Optional[time.Time]
	EndAt         Optional[time.Time]
	MaxUses       Optional[int]
}

// Apply copies every present field onto p.
func (u PromotionUpdate) Apply(p *Promotion) {
	applyOptional(&p.Code, u.Code)
	applyRequired(&p.Name, u.Name)
	applyRequired(&p.Type, u.Type)
	applyRequired(&p.Value, u.Value)
	applyOptional(&p.MinOrderTotal, u.MinOrderTotal)
	applyRequired(&p.Scope, u.Scope)
	applyOptional(&p.CategoryID, u.CategoryID)
	if u.ProductIDs.Set {
		p.ProductIDs = nil
		if u.ProductIDs.Value != nil {
			p.ProductIDs = append([]int64(nil), (*u.ProductIDs.Value)...)
		}
	}
	applyRequired(&p.Active, u.Active)
	applyOptional(&p.StartAt, u.StartAt)
	applyOptional(&p.EndAt, u.EndAt)
	applyOptional(&p.MaxUses, u.MaxUses)
}
