package repository

import (
	"context"

	"job-board/domain/model"

	"github.com/google/uuid"
)

type IUser interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) (model.User, error)
}
