package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-board/domain/model"
	"job-board/domain/repository"
	"job-board/infrastructure/logger"
	"job-board/infrastructure/utils"

	"github.com/alexedwards/argon2id"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const minPasswordLength = 6

type IUserUsecase interface {
	Register(ctx context.Context, req model.ReqRegister) (model.User, error)
	Login(ctx context.Context, req model.ReqLogin) (string, error)
}

type UserUsecase struct {
	userRepository repository.IUser
	secretKey      string
	tokenTTL       time.Duration
}

func NewUserUsecase(userRepository repository.IUser, secretKey string, tokenTTL time.Duration) IUserUsecase {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserUsecase{userRepository: userRepository, secretKey: secretKey, tokenTTL: tokenTTL}
}

func (u *UserUsecase) Register(ctx context.Context, req model.ReqRegister) (model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required, validation.RuneLength(minPasswordLength, 0)),
	)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %s", model.ErrValidation, err.Error())
	}

	if _, err := u.userRepository.GetByEmail(ctx, req.Email); err == nil {
		return model.User{}, model.ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		logger.GetLogger().WithField("error", err).Error("Error while checking existing user")
		return model.User{}, err
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while hashing password")
		return model.User{}, err
	}

	user, err := u.userRepository.CreateUser(ctx, model.User{Email: req.Email, PasswordHash: hash})
	if err != nil {
		return model.User{}, err
	}
	logger.GetLogger().WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login returns a signed token. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (u *UserUsecase) Login(ctx context.Context, req model.ReqLogin) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := u.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrInvalidCredentials
		}
		logger.GetLogger().WithField("error", err).Error("Error while loading user")
		return "", err
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil || !match {
		return "", model.ErrInvalidCredentials
	}
	return utils.GenerateToken(user, u.secretKey, u.tokenTTL)
}
