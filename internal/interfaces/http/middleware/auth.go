package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/utils"
)

// ContextUserIDKey gin context 中的用户 ID 键
const ContextUserIDKey = "user_id"

// Auth JWT 认证中间件
func Auth(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Abort()
			dto.Error(c, apperrors.ErrTokenMissing)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Abort()
			dto.Error(c, apperrors.ErrTokenInvalid)
			return
		}

		claims, err := jwtManager.ParseToken(parts[1])
		if err != nil {
			c.Abort()
			if errors.Is(err, utils.ErrExpiredToken) {
				dto.Error(c, apperrors.ErrTokenExpired)
			} else {
				dto.Error(c, apperrors.ErrTokenInvalid)
			}
			return
		}
		if claims.Type != "access" {
			c.Abort()
			dto.Error(c, apperrors.New(apperrors.CodeTokenInvalid, "令牌类型错误"))
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// UserID 从 gin context 取当前用户 ID
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
