package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, username, email, points, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.conn(ctx).QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.Points, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, domainErrors.UserNotFound(id))
	}
	return &u, nil
}

func (r *userRepository) AddPoints(ctx context.Context, id int64, points int64) error {
	const query = `UPDATE users SET points = points + $1 WHERE id=$2`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, points, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.UserNotFound(id)
	}
	return nil
}
