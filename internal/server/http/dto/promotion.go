package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// PreviewRequest asks what a code would take off the given lines.
type PreviewRequest struct {
	Code  string             `json:"code"`
	Items []OrderLineRequest `json:"items"`
}

// PreviewResponse is the outcome of a discount preview.
type PreviewResponse struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	Message     string          `json:"message"`
	PromotionID *int64          `json:"promotionId,omitempty"`
}

// PromotionRequest describes a promotion to create.
type PromotionRequest struct {
	Code          *string          `json:"code"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Value         decimal.Decimal  `json:"value"`
	MinOrderTotal *decimal.Decimal `json:"minOrderTotal"`
	Scope         string           `json:"scope"`
	CategoryID    *int64           `json:"categoryId"`
	ProductIDs    []int64          `json:"productIds"`
	Active        *bool            `json:"active"`
	StartAt       *time.Time       `json:"startAt"`
	EndAt         *time.Time       `json:"endAt"`
	MaxUses       *int             `json:"maxUses"`
}

// PromotionResponse describes a stored promotion.
type PromotionResponse struct {
	ID            int64            `json:"id"`
	Code          *string          `json:"code"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Value         decimal.Decimal  `json:"value"`
	MinOrderTotal *decimal.Decimal `json:"minOrderTotal"`
	Scope         string           `json:"scope"`
	CategoryID    *int64           `json:"categoryId"`
	ProductIDs    []int64          `json:"productIds"`
	Active        bool             `json:"active"`
	StartAt       *time.Time       `json:"startAt"`
	EndAt         *time.Time       `json:"endAt"`
	MaxUses       *int             `json:"maxUses"`
	UsedCount     int              `json:"usedCount"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// PromotionPatch is a partial update. A missing key leaves the field alone,
// an explicit null clears it.
type PromotionPatch struct {
	Update model.PromotionUpdate
}

// UnmarshalJSON fills Update from the keys present in data.
func (p *PromotionPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u := &p.Update
	steps := []error{
		field(raw, "code", &u.Code),
		field(raw, "name", &u.Name),
		field(raw, "type", &u.Type),
		field(raw, "value", &u.Value),
		field(raw, "minOrderTotal", &u.MinOrderTotal),
		field(raw, "scope", &u.Scope),
		field(raw, "categoryId", &u.CategoryID),
		field(raw, "productIds", &u.ProductIDs),
		field(raw, "active", &u.Active),
		field(raw, "startAt", &u.StartAt),
		field(raw, "endAt", &u.EndAt),
		field(raw, "maxUses", &u.MaxUses),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}
	return nil
}

func field[T any](raw map[string]json.RawMessage, key string, dst *model.Optional[T]) error {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		*dst = model.Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	*dst = model.Some(v)
	return nil
}
