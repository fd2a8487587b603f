package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
)

// Recovery panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "请求处理 panic",
					fmt.Errorf("%v", r),
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.Abort()
				dto.Error(c, apperrors.ErrInternalError)
			}
		}()
		c.Next()
	}
}
