// Package router 组装 HTTP 路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/persistence/redis"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/handler"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/middleware"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/utils"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Chat         *handler.ChatHandler
	Conversation *handler.ConversationHandler
	Memory       *handler.MemoryHandler
	Asset        *handler.AssetHandler
	Upload       *handler.UploadHandler
}

// New 创建路由
func New(
	cfg *config.Config,
	handlers *Handlers,
	jwtManager *utils.JWTManager,
	limiter *redis.RateLimiter,
	assetDir string,
) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Otel(cfg.App.Name),
		middleware.TraceContext(),
		middleware.Metrics(),
		middleware.CORS(&cfg.Security.CORS),
	)

	// 运维端点
	r.GET("/healthz", handlers.Health.Liveness)
	r.GET("/readyz", handlers.Health.Readiness)
	if cfg.Observability.Metrics.Enabled {
		r.GET(cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 生成产物静态访问
	r.Static(cfg.Storage.BaseURL, assetDir)

	v1 := r.Group("/api/v1")

	// 公开接口
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", handlers.Auth.Register)
		authGroup.POST("/login", handlers.Auth.Login)
		authGroup.POST("/refresh", handlers.Auth.Refresh)
	}

	// 认证接口
	authed := v1.Group("")
	authed.Use(middleware.Auth(jwtManager))
	if cfg.Security.RateLimit.Enabled {
		authed.Use(middleware.RateLimit(limiter))
	}
	{
		authed.POST("/chat/turns", handlers.Chat.Turn)

		authed.GET("/conversations", handlers.Conversation.List)
		authed.GET("/conversations/:id", handlers.Conversation.Get)
		authed.GET("/conversations/:id/messages", handlers.Conversation.Messages)
		authed.DELETE("/conversations/:id", handlers.Conversation.Delete)

		authed.GET("/memories", handlers.Memory.List)
		authed.POST("/memories", handlers.Memory.Append)
		authed.DELETE("/memories", handlers.Memory.Reset)

		authed.GET("/assets", handlers.Asset.List)
		authed.GET("/assets/:id", handlers.Asset.Get)

		authed.POST("/upload/image", handlers.Upload.Image)
	}

	return r
}
