package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

const orderColumns = `id, user_id, subtotal, promo_discount, loyalty_discount, discount, total, status,
                      promotion_code, payment_method, ship_phone, ship_address, ship_city, ship_note,
                      created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.PromoDiscount, &o.LoyaltyDiscount, &o.Discount, &o.Total, &o.Status,
		&o.PromotionCode, &o.PaymentMethod, &o.Shipping.Phone, &o.Shipping.AddressLine, &o.Shipping.City, &o.Shipping.Note,
		&o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const insertOrder = `INSERT INTO orders (user_id, subtotal, promo_discount, loyalty_discount, discount, total, status,
                                             promotion_code, payment_method, ship_phone, ship_address, ship_city, ship_note)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                         RETURNING id, created_at, updated_at`
	const insertItem = `INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, status)
                        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	return r.storage.WithinTransaction(ctx, func(ctx context.Context) error {
		q := r.storage.conn(ctx)
		err := q.QueryRow(ctx, insertOrder,
			order.UserID, order.Subtotal, order.PromoDiscount, order.LoyaltyDiscount, order.Discount, order.Total, order.Status,
			order.PromotionCode, order.PaymentMethod, order.Shipping.Phone, order.Shipping.AddressLine, order.Shipping.City, order.Shipping.Note,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			if item.Status == "" {
				item.Status = model.ItemStatusPending
			}
			err := q.QueryRow(ctx, insertItem,
				item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Status,
			).Scan(&item.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
}

func (r *orderRepository) getOne(ctx context.Context, query string, id int64) (*model.Order, error) {
	var order model.Order
	if err := scanOrder(r.storage.conn(ctx).QueryRow(ctx, query, id), &order); err != nil {
		return nil, notFound(err, domainErrors.OrderNotFound(id))
	}
	orders := []model.Order{order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *orderRepository) ListByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = ANY($1) ORDER BY created_at, id`, raw)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	const query = `SELECT id, order_id, product_id, product_name, quantity, unit_price, status, chef_id
                   FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.storage.conn(ctx).Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Status, &it.ChefID); err != nil {
			return err
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.OrderNotFound(id)
	}
	return nil
}

// --- kitchen item operations ---

func (r *orderRepository) GetItem(ctx context.Context, itemID int64) (*model.OrderItem, error) {
	const query = `SELECT id, order_id, product_id, product_name, quantity, unit_price, status, chef_id
                   FROM order_items WHERE id=$1`
	var it model.OrderItem
	err := r.storage.conn(ctx).QueryRow(ctx, query, itemID).Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Status, &it.ChefID)
	if err != nil {
		return nil, notFound(err, domainErrors.OrderItemNotFound(itemID))
	}
	return &it, nil
}

func (r *orderRepository) ClaimItem(ctx context.Context, itemID, chefID int64) (bool, error) {
	const query = `UPDATE order_items SET status=$1, chef_id=$2
                   WHERE id=$3 AND status=$4 AND chef_id IS NULL`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, model.ItemStatusCooking, chefID, itemID, model.ItemStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) UpdateItem(ctx context.Context, itemID int64, status model.ItemStatus, chefID *int64) error {
	const query = `UPDATE order_items SET status=$1, chef_id=$2 WHERE id=$3`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, status, chefID, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.OrderItemNotFound(itemID)
	}
	return nil
}

func (r *orderRepository) ClaimPendingItems(ctx context.Context, orderID, chefID int64) (int64, error) {
	const query = `UPDATE order_items SET status=$1, chef_id=$2
                   WHERE order_id=$3 AND status=$4 AND chef_id IS NULL`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, model.ItemStatusCooking, chefID, orderID, model.ItemStatusPending)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *orderRepository) FinishCookingItems(ctx context.Context, orderID int64) (int64, error) {
	const query = `UPDATE order_items SET status=$1 WHERE order_id=$2 AND status=$3`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, model.ItemStatusDone, orderID, model.ItemStatusCooking)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SelectStalePending skips rows locked by in-flight transitions.
func (r *orderRepository) SelectStalePending(ctx context.Context, method model.PaymentMethod, before time.Time, limit int) ([]int64, error) {
	const query = `SELECT id FROM orders
                   WHERE status=$1 AND payment_method=$2 AND created_at < $3
                   ORDER BY created_at
                   LIMIT $4
                   FOR UPDATE SKIP LOCKED`

	var ids []int64
	err := r.storage.WithinTransaction(ctx, func(ctx context.Context) error {
		rows, err := r.storage.conn(ctx).Query(ctx, query, model.OrderStatusPending, method, before, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
