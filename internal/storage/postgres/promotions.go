package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

const promotionColumns = `p.id, p.code, p.name, p.type, p.value, p.min_order_total, p.scope, p.category_id,
                          p.active, p.start_at, p.end_at, p.max_uses, p.used_count, p.created_at,
                          ARRAY(SELECT pp.product_id FROM promotion_products pp WHERE pp.promotion_id = p.id ORDER BY pp.product_id)`

func scanPromotion(row pgx.Row, p *model.Promotion) error {
	return row.Scan(&p.ID, &p.Code, &p.Name, &p.Type, &p.Value, &p.MinOrderTotal, &p.Scope, &p.CategoryID,
		&p.Active, &p.StartAt, &p.EndAt, &p.MaxUses, &p.UsedCount, &p.CreatedAt, &p.ProductIDs)
}

func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	const query = `SELECT ` + promotionColumns + ` FROM promotions p WHERE LOWER(p.code) = LOWER($1)`
	var p model.Promotion
	if err := scanPromotion(r.storage.conn(ctx).QueryRow(ctx, query, code), &p); err != nil {
		return nil, notFound(err, domainErrors.ErrNotFound)
	}
	return &p, nil
}

func (r *promotionRepository) GetByID(ctx context.Context, id int64) (*model.Promotion, error) {
	const query = `SELECT ` + promotionColumns + ` FROM promotions p WHERE p.id=$1`
	var p model.Promotion
	if err := scanPromotion(r.storage.conn(ctx).QueryRow(ctx, query, id), &p); err != nil {
		return nil, notFound(err, domainErrors.PromotionNotFound(id))
	}
	return &p, nil
}

func (r *promotionRepository) List(ctx context.Context) ([]model.Promotion, error) {
	const query = `SELECT ` + promotionColumns + ` FROM promotions p ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.storage.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Promotion
	for rows.Next() {
		var p model.Promotion
		if err := scanPromotion(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *promotionRepository) Create(ctx context.Context, p *model.Promotion) error {
	const query = `INSERT INTO promotions (code, name, type, value, min_order_total, scope, category_id,
                                           active, start_at, end_at, max_uses)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   RETURNING id, used_count, created_at`
	return r.storage.WithinTransaction(ctx, func(ctx context.Context) error {
		err := r.storage.conn(ctx).QueryRow(ctx, query,
			p.Code, p.Name, p.Type, p.Value, p.MinOrderTotal, p.Scope, p.CategoryID,
			p.Active, p.StartAt, p.EndAt, p.MaxUses,
		).Scan(&p.ID, &p.UsedCount, &p.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrPromotionCodeTaken
			}
			return err
		}
		return r.replaceProducts(ctx, p)
	})
}

func (r *promotionRepository) Update(ctx context.Context, p *model.Promotion) error {
	const query = `UPDATE promotions
                   SET code=$1, name=$2, type=$3, value=$4, min_order_total=$5, scope=$6, category_id=$7,
                       active=$8, start_at=$9, end_at=$10, max_uses=$11
                   WHERE id=$12`
	return r.storage.WithinTransaction(ctx, func(ctx context.Context) error {
		tag, err := r.storage.conn(ctx).Exec(ctx, query,
			p.Code, p.Name, p.Type, p.Value, p.MinOrderTotal, p.Scope, p.CategoryID,
			p.Active, p.StartAt, p.EndAt, p.MaxUses, p.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrPromotionCodeTaken
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.PromotionNotFound(p.ID)
		}
		return r.replaceProducts(ctx, p)
	})
}

func (r *promotionRepository) replaceProducts(ctx context.Context, p *model.Promotion) error {
	q := r.storage.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM promotion_products WHERE promotion_id=$1`, p.ID); err != nil {
		return err
	}
	for _, productID := range p.ProductIDs {
		if _, err := q.Exec(ctx, `INSERT INTO promotion_products (promotion_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, p.ID, productID); err != nil {
			return err
		}
	}
	return nil
}

func (r *promotionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.conn(ctx).Exec(ctx, `DELETE FROM promotions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.PromotionNotFound(id)
	}
	return nil
}

// IncrementUsage is a plain atomic counter bump; the cap is enforced best effort at preview time.
func (r *promotionRepository) IncrementUsage(ctx context.Context, id int64) error {
	tag, err := r.storage.conn(ctx).Exec(ctx, `UPDATE promotions SET used_count = used_count + 1 WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.PromotionNotFound(id)
	}
	return nil
}
