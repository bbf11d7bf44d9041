package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

const paymentColumns = `id, order_id, amount, provider_ref, link_ref, checkout_url, status, signature, created_at, updated_at`

func scanPayment(row pgx.Row, p *model.Payment) error {
	return row.Scan(&p.ID, &p.OrderID, &p.Amount, &p.ProviderRef, &p.LinkRef, &p.CheckoutURL, &p.Status, &p.Signature, &p.CreatedAt, &p.UpdatedAt)
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id=$1`
	var p model.Payment
	if err := scanPayment(r.storage.conn(ctx).QueryRow(ctx, query, orderID), &p); err != nil {
		return nil, notFound(err, domainErrors.PaymentNotFound(orderID))
	}
	return &p, nil
}

func (r *paymentRepository) GetByProviderRef(ctx context.Context, ref string) (*model.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE provider_ref=$1`
	var p model.Payment
	if err := scanPayment(r.storage.conn(ctx).QueryRow(ctx, query, ref), &p); err != nil {
		return nil, notFound(err, domainErrors.ErrNotFound)
	}
	return &p, nil
}

func (r *paymentRepository) Upsert(ctx context.Context, p *model.Payment) error {
	const query = `INSERT INTO payments (order_id, amount, provider_ref, link_ref, checkout_url, status)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   ON CONFLICT (order_id) DO UPDATE
                   SET amount = EXCLUDED.amount,
                       provider_ref = EXCLUDED.provider_ref,
                       link_ref = EXCLUDED.link_ref,
                       checkout_url = EXCLUDED.checkout_url,
                       updated_at = NOW()
                   WHERE payments.status = $6
                   RETURNING id, status, created_at, updated_at`
	err := r.storage.conn(ctx).QueryRow(ctx, query,
		p.OrderID, p.Amount, p.ProviderRef, p.LinkRef, p.CheckoutURL, model.PaymentStatusPending,
	).Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrDuplicatePayment
		}
		return err
	}
	return nil
}

func (r *paymentRepository) Settle(ctx context.Context, id int64, status model.PaymentStatus, signature string) (bool, error) {
	const query = `UPDATE payments SET status=$1, signature=$2, updated_at=NOW() WHERE id=$3 AND status=$4`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, status, signature, id, model.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
