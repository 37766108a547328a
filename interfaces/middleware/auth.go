package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"job-board/domain/dto"
	"job-board/domain/repository"
	"job-board/infrastructure/logger"
	"job-board/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth accepts "Authorization: Bearer <token>" and, for SSE clients that
// cannot set headers, a "token" query parameter.
func Auth(userRepository repository.IUser, secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		raw := bearerToken(ctx)
		if raw == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, userID, err := utils.ParseToken(raw, secretKey)
		if err != nil {
			res.ResponseMessage = abortMessage(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		if _, err := userRepository.GetByID(ctx.Request.Context(), userID); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{
				"user_id": userID,
				"email":   claims.Email,
				"error":   err,
			}).Warn("Token subject not found")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		ctx.Set("user_id", userID.String())
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) string {
	authorization := ctx.Request.Header.Get("Authorization")
	if authorization == "" {
		return ctx.Query("token")
	}
	auth := strings.SplitN(authorization, "Bearer ", 2)
	if len(auth) != 2 {
		return ""
	}
	return strings.TrimSpace(auth[1])
}

func abortMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
	return "Unauthorized"
}
