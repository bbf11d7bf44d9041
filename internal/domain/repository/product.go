package repository

import (
	"context"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// ProductRepository is the inventory ledger.
type ProductRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	// DecrementStock fails with OutOfStock unless stock covers qty.
	DecrementStock(ctx context.Context, id int64, qty int) error
	IncrementStock(ctx context.Context, id int64, qty int) error
}

// CartRepository manages user carts. The order flow only clears them.
type CartRepository interface {
	Clear(ctx context.Context, userID int64) error
}
