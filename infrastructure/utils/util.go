package utils

import (
	"errors"
	"time"

	"job-board/domain/model"
	"job-board/infrastructure/logger"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var ErrEmptySecret = errors.New("secret key is empty")

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs an HS256 token whose subject is the user id.
func GenerateToken(user model.User, secretKey string, ttl time.Duration) (string, error) {
	if secretKey == "" {
		return "", ErrEmptySecret
	}
	now := GetCurrentTime()
	claims := model.UserClaims{
		Email: user.Email,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// ParseToken validates signature and expiry and returns the claims and user id.
// An empty secret verifies nothing.
func ParseToken(tokenString, secretKey string) (model.UserClaims, uuid.UUID, error) {
	var claims model.UserClaims
	if secretKey == "" {
		return claims, uuid.Nil, ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return claims, uuid.Nil, err
	}
	if !token.Valid {
		return claims, uuid.Nil, errors.New("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return claims, uuid.Nil, err
	}
	return claims, id, nil
}
