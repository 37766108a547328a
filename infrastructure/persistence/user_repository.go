package persistence

import (
	"context"
	"database/sql"
	"errors"

	"job-board/domain/model"
	"job-board/domain/repository"
	"job-board/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.IUser {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.email, u.password_hash, u.created_at, u.updated_at
	FROM users AS u
	WHERE u.id = $1`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing user by id query")
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.email, u.password_hash, u.created_at, u.updated_at
	FROM users AS u
	WHERE LOWER(u.email) = LOWER($1)`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing user by email query")
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// CreateUser inserts the user and maps a unique-email violation to model.ErrEmailTaken.
func (r *UserRepository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO users (email, password_hash) VALUES ($1, $2)
	RETURNING id, created_at, updated_at`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing create user")
		return model.User{}, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.User{}, model.ErrEmailTaken
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error": err,
			"email": user.Email,
		}).Error("Error while creating user")
		return model.User{}, err
	}
	return user, nil
}
