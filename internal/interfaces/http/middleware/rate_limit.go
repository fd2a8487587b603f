package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/persistence/redis"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
)

// RateLimit 限流中间件
//
// 已认证请求按用户限流，匿名请求按客户端 IP 限流。
func RateLimit(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := UserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "限流器不可用，请求放行", "error", err)
		}
		if !allowed {
			c.Abort()
			dto.Error(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
