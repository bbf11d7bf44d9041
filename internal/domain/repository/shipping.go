package repository

import (
	"context"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// ShippingRepository keeps users' default delivery addresses.
type ShippingRepository interface {
	Get(ctx context.Context, userID int64) (*model.ShippingInfo, error)
	Upsert(ctx context.Context, info *model.ShippingInfo) error
}
