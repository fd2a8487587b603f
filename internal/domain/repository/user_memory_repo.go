package repository

import (
	"context"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
)

// UserMemoryRepository 用户偏好记忆仓储接口
type UserMemoryRepository interface {
	Create(ctx context.Context, memory *entity.UserMemory) error
	// ListRecent 返回用户最近 limit 条记忆，按插入顺序从新到旧排列
	ListRecent(ctx context.Context, userID string, limit int) ([]entity.UserMemory, error)
	Count(ctx context.Context, userID string) (int64, error)
	// TrimToCap 仅保留最新 cap 条记忆，删除更早的，返回删除条数
	TrimToCap(ctx context.Context, userID string, cap int) (int64, error)
	DeleteByUser(ctx context.Context, userID string) error
}
