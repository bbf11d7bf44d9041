package repository

import (
	"context"
	"time"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// OrderRepository describes persistence operations with orders and their items.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// GetForUpdate locks the order row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	List(ctx context.Context, limit, offset int) ([]model.Order, error)
	ListByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error

	GetItem(ctx context.Context, itemID int64) (*model.OrderItem, error)
	// ClaimItem assigns the item only while it is PENDING and unowned.
	ClaimItem(ctx context.Context, itemID, chefID int64) (bool, error)
	UpdateItem(ctx context.Context, itemID int64, status model.ItemStatus, chefID *int64) error
	ClaimPendingItems(ctx context.Context, orderID, chefID int64) (int64, error)
	FinishCookingItems(ctx context.Context, orderID int64) (int64, error)

	SelectStalePending(ctx context.Context, method model.PaymentMethod, before time.Time, limit int) ([]int64, error)
}
