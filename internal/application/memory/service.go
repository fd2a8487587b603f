// Package memory 提供用户偏好记忆服务
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/metrics"
)

// Cache 偏好块缓存端口
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, loader func(ctx context.Context) (any, error)) error
	Delete(ctx context.Context, keys ...string) error
}

// Entry 待追加的一条偏好记忆
//
// Text 与 ImageURL 恰好填充其一，与记忆类型对应。
type Entry struct {
	ConversationID string
	Type           entity.MemoryType
	Text           string
	ImageURL       string
}

// Service 用户偏好记忆服务
//
// 每个用户最多保留 entity.MaxMemoriesPerUser 条记忆，超出后按插入顺序淘汰最旧的。
// 渲染后的偏好块缓存在 Redis，写入和清空时失效。
type Service struct {
	memories repository.UserMemoryRepository
	cache    Cache
	cfg      *config.PreferencesConfig
}

// NewService 创建偏好记忆服务
func NewService(memories repository.UserMemoryRepository, cache Cache, cfg *config.PreferencesConfig) *Service {
	return &Service{memories: memories, cache: cache, cfg: cfg}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("preferences:block:%s", userID)
}

// Append 逐条追加偏好并淘汰超限的最旧记录
//
// 内容空白的条目被跳过，类型与内容不匹配的条目视为参数错误。
// 追加成功后偏好块缓存失效。
func (s *Service) Append(ctx context.Context, userID string, entries []Entry) error {
	if !s.cfg.Enabled {
		return nil
	}

	wrote := false
	for _, e := range entries {
		row, err := toRow(userID, e)
		if err != nil {
			return err
		}
		if row == nil {
			continue
		}
		if err := s.memories.Create(ctx, row); err != nil {
			return err
		}
		wrote = true
	}
	if !wrote {
		return nil
	}

	trimmed, err := s.memories.TrimToCap(ctx, userID, entity.MaxMemoriesPerUser)
	if err != nil {
		return err
	}
	if trimmed > 0 {
		metrics.MemoryRowsTrimmed.Add(float64(trimmed))
		logger.Debug(ctx, "淘汰超限偏好记忆", "user_id", userID, "trimmed", trimmed)
	}

	s.invalidate(ctx, userID)
	return nil
}

// toRow 把条目转换为实体，内容空白返回 nil 表示跳过
func toRow(userID string, e Entry) (*entity.UserMemory, error) {
	switch e.Type {
	case entity.MemoryTypeText:
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return nil, nil
		}
		return &entity.UserMemory{
			UserID:         userID,
			ConversationID: e.ConversationID,
			MemoryType:     entity.MemoryTypeText,
			Text:           text,
		}, nil
	case entity.MemoryTypeImage:
		url := strings.TrimSpace(e.ImageURL)
		if url == "" {
			return nil, nil
		}
		return &entity.UserMemory{
			UserID:         userID,
			ConversationID: e.ConversationID,
			MemoryType:     entity.MemoryTypeImage,
			ImageURL:       url,
		}, nil
	default:
		return nil, apperrors.Validation("未知的记忆类型: " + string(e.Type))
	}
}

// Recent 返回用户最近的偏好记忆，按插入顺序从新到旧，至多 limit 条
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]entity.UserMemory, error) {
	if limit <= 0 || limit > entity.MaxMemoriesPerUser {
		limit = entity.MaxMemoriesPerUser
	}
	return s.memories.ListRecent(ctx, userID, limit)
}

// Reset 清空用户全部偏好记忆
func (s *Service) Reset(ctx context.Context, userID string) error {
	if err := s.memories.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// PreferencesBlock 渲染注入规划器的偏好文本块
//
// 无记忆或功能关闭时返回空串。结果走 Redis 缓存。
func (s *Service) PreferencesBlock(ctx context.Context, userID string) (string, error) {
	if !s.cfg.Enabled {
		return "", nil
	}

	var block string
	err := s.cache.GetOrLoad(ctx, cacheKey(userID), s.cfg.CacheTTL, &block,
		func(ctx context.Context) (any, error) {
			return s.renderBlock(ctx, userID)
		})
	if err != nil {
		return "", err
	}
	return block, nil
}

func (s *Service) renderBlock(ctx context.Context, userID string) (string, error) {
	items, err := s.memories.ListRecent(ctx, userID, entity.MaxMemoriesPerUser)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("Known user preferences (most recent first):\n")
	for i := range items {
		b.WriteString("- ")
		if items[i].MemoryType == entity.MemoryTypeImage {
			b.WriteString("[reference image] ")
			b.WriteString(items[i].ImageURL)
		} else {
			b.WriteString(items[i].Text)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil {
		// 缓存失效失败只影响 TTL 内的偏好新鲜度
		logger.Warn(ctx, "偏好块缓存失效失败", "user_id", userID, "error", err)
	}
}
