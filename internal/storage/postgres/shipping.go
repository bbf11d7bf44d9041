package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

func (r *shippingRepository) Get(ctx context.Context, userID int64) (*model.ShippingInfo, error) {
	const query = `SELECT user_id, phone, address_line, city, note, updated_at FROM shipping_info WHERE user_id=$1`
	var info model.ShippingInfo
	err := r.storage.conn(ctx).QueryRow(ctx, query, userID).Scan(
		&info.UserID, &info.Phone, &info.AddressLine, &info.City, &info.Note, &info.UpdatedAt)
	if err != nil {
		return nil, notFound(err, domainErrors.ErrNotFound)
	}
	return &info, nil
}

func (r *shippingRepository) Upsert(ctx context.Context, info *model.ShippingInfo) error {
	const query = `INSERT INTO shipping_info (user_id, phone, address_line, city, note)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (user_id) DO UPDATE
                   SET phone = EXCLUDED.phone,
                       address_line = EXCLUDED.address_line,
                       city = EXCLUDED.city,
                       note = EXCLUDED.note,
                       updated_at = NOW()
                   RETURNING updated_at`
	return r.storage.conn(ctx).QueryRow(ctx, query,
		info.UserID, info.Phone, info.AddressLine, info.City, info.Note).Scan(&info.UpdatedAt)
}
