// Package wire 负责依赖装配
package wire

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/generation"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/history"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/memory"
	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/media"
	redisinfra "github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/persistence/redis"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/utils"
)

// App 装配完成的应用
type App struct {
	Engine *gin.Engine
	Config *config.Config
}

// ProvidePostgresConfig 取 PostgreSQL 子配置
func ProvidePostgresConfig(cfg *config.Config) *config.PostgresConfig {
	return &cfg.Database.Postgres
}

// ProvideRedisConfig 取 Redis 子配置
func ProvideRedisConfig(cfg *config.Config) *config.RedisConfig {
	return &cfg.Cache.Redis
}

// ProvideLLMConfig 取 LLM 子配置
func ProvideLLMConfig(cfg *config.Config) *config.LLMConfig {
	return &cfg.LLM
}

// ProvideStorageConfig 取存储子配置
func ProvideStorageConfig(cfg *config.Config) *config.StorageConfig {
	return &cfg.Storage
}

// ProvideMediaConfig 取媒体子配置
func ProvideMediaConfig(cfg *config.Config) *config.MediaConfig {
	return &cfg.Media
}

// ProvideJWTConfig 取 JWT 子配置
func ProvideJWTConfig(cfg *config.Config) *config.JWTConfig {
	return &cfg.Security.JWT
}

// ProvidePreferencesConfig 取偏好子配置
func ProvidePreferencesConfig(cfg *config.Config) *config.PreferencesConfig {
	return &cfg.Features.Preferences
}

// ProvideAssetDir 取生成产物的落盘目录
func ProvideAssetDir(store *media.LocalStore) string {
	return store.Dir()
}

// ProvideJWTManager 创建 JWT 管理器
func ProvideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
}

// ProvideRateLimiter 创建限流器
func ProvideRateLimiter(client *goredis.Client, cfg *config.Config) *redisinfra.RateLimiter {
	return redisinfra.NewRateLimiter(client,
		cfg.Security.RateLimit.RequestsPerWindow, cfg.Security.RateLimit.Window)
}

// ProvideHistoryService 创建历史窗口服务
func ProvideHistoryService(cfg *config.Config, messages repository.MessageRepository) *history.Service {
	return history.NewService(messages, cfg.Features.History.WindowSize)
}

// ProvideMemoryService 创建偏好记忆服务
func ProvideMemoryService(memories repository.UserMemoryRepository, cache *redisinfra.Cache, cfg *config.Config) *memory.Service {
	return memory.NewService(memories, cache, &cfg.Features.Preferences)
}

// ProvideDispatcher 按配置选择媒体提供商并创建派发器
func ProvideDispatcher(cfg *config.Config, store *media.LocalStore, assets repository.AssetRepository) (*generation.Dispatcher, error) {
	imageGen, err := buildImageGenerator(&cfg.Media.Image, store)
	if err != nil {
		return nil, err
	}
	videoGen, err := buildVideoGenerator(&cfg.Media.Video, store)
	if err != nil {
		return nil, err
	}
	return generation.NewDispatcher(imageGen, videoGen, assets), nil
}

func buildImageGenerator(cfg *config.ImageProviderConfig, store *media.LocalStore) (media.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return media.NewOpenAIImageGenerator(cfg, store)
	case "mockup", "":
		return media.NewMockupImageGenerator(), nil
	default:
		return nil, apperrors.Configuration("未知的图片提供商: " + cfg.Provider)
	}
}

func buildVideoGenerator(cfg *config.VideoProviderConfig, store *media.LocalStore) (media.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return media.NewOpenAIVideoGenerator(cfg, store)
	case "mockup", "":
		return media.NewMockupVideoGenerator(), nil
	default:
		return nil, apperrors.Configuration("未知的视频提供商: " + cfg.Provider)
	}
}
