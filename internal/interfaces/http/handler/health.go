// Package handler 实现 HTTP 处理器
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Liveness 存活检查
func (h *HealthHandler) Liveness(c *gin.Context) {
	dto.Success(c, gin.H{"status": "ok"})
}

// Readiness 就绪检查，探测数据库与缓存连通性
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["postgres"] = "down"
		healthy = false
	} else {
		checks["postgres"] = "up"
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = "down"
		healthy = false
	} else {
		checks["redis"] = "up"
	}

	if !healthy {
		c.JSON(503, gin.H{"status": "degraded", "checks": checks})
		return
	}
	dto.Success(c, gin.H{"status": "ok", "checks": checks})
}
