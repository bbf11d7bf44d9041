package repository

import (
	"context"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	AddPoints(ctx context.Context, id int64, points int64) error
}
