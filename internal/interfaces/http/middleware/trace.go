package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
)

// Otel 链路追踪中间件，负责 span 的创建与跨服务传播
func Otel(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 把当前 span 的 trace_id 写进日志 context 和 gin context
//
// 必须注册在 Otel 之后。
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			traceID := span.SpanContext().TraceID().String()
			c.Set("trace_id", traceID)
			ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
			ctx = logger.WithContext(ctx, logger.SpanIDKey, span.SpanContext().SpanID().String())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
