package repository

import (
	"context"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// PromotionRepository describes persistence of discount rules.
type PromotionRepository interface {
	// GetByCode matches codes case-insensitively.
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)
	GetByID(ctx context.Context, id int64) (*model.Promotion, error)
	List(ctx context.Context) ([]model.Promotion, error)
	Create(ctx context.Context, promotion *model.Promotion) error
	Update(ctx context.Context, promotion *model.Promotion) error
	Delete(ctx context.Context, id int64) error
	IncrementUsage(ctx context.Context, id int64) error
}
