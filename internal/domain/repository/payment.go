package repository

import (
	"context"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// PaymentRepository stores the single payment record of an order.
type PaymentRepository interface {
	GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
	GetByProviderRef(ctx context.Context, ref string) (*model.Payment, error)
	// Upsert refreshes the link of a PENDING payment and fails with DuplicatePayment otherwise.
	Upsert(ctx context.Context, payment *model.Payment) error
	// Settle moves a payment out of PENDING. It reports false when it was already settled.
	Settle(ctx context.Context, id int64, status model.PaymentStatus, signature string) (bool, error)
}
