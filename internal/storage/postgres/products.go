package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// --- ProductRepository implementation ---

func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	const query = `SELECT id, name, price, stock, active, category_id FROM products WHERE id = ANY($1)`
	rows, err := r.storage.conn(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]model.Product, len(ids))
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active, &p.CategoryID); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	const query = `UPDATE products SET stock = stock - $1 WHERE id=$2 AND stock >= $1`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, qty, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.OutOfStock(id)
	}
	return nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id int64, qty int) error {
	const query = `UPDATE products SET stock = stock + $1 WHERE id=$2`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, qty, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ProductNotFound(id)
	}
	return nil
}

// --- CartRepository implementation ---

func (r *cartRepository) Clear(ctx context.Context, userID int64) error {
	const query = `DELETE FROM cart_items WHERE user_id=$1`
	_, err := r.storage.conn(ctx).Exec(ctx, query, userID)
	return err
}
