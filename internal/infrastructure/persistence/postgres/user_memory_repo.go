package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// userMemoryRepo 用户偏好记忆仓储实现
type userMemoryRepo struct {
	db *gorm.DB
}

// NewUserMemoryRepository 创建用户偏好记忆仓储
func NewUserMemoryRepository(db *gorm.DB) repository.UserMemoryRepository {
	return &userMemoryRepo{db: db}
}

func (r *userMemoryRepo) Create(ctx context.Context, memory *entity.UserMemory) error {
	ctx, span := tracer.Start(ctx, "UserMemoryRepo.Create")
	defer span.End()

	if err := getDB(ctx, r.db).Create(memory).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入偏好记忆失败")
	}
	return nil
}

// ListRecent 按插入顺序从新到旧返回，自增 ID 即插入顺序
func (r *userMemoryRepo) ListRecent(ctx context.Context, userID string, limit int) ([]entity.UserMemory, error) {
	ctx, span := tracer.Start(ctx, "UserMemoryRepo.ListRecent")
	defer span.End()

	var items []entity.UserMemory
	err := getDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询偏好记忆失败")
	}
	return items, nil
}

func (r *userMemoryRepo) Count(ctx context.Context, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "UserMemoryRepo.Count")
	defer span.End()

	var total int64
	err := getDB(ctx, r.db).
		Model(&entity.UserMemory{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计偏好记忆失败")
	}
	return total, nil
}

// TrimToCap 删除最新 keep 条之外的所有记录
func (r *userMemoryRepo) TrimToCap(ctx context.Context, userID string, keep int) (int64, error) {
	ctx, span := tracer.Start(ctx, "UserMemoryRepo.TrimToCap")
	defer span.End()

	db := getDB(ctx, r.db)
	sub := db.Session(&gorm.Session{NewDB: true}).
		Model(&entity.UserMemory{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(keep)

	result := db.
		Where("user_id = ? AND id NOT IN (?)", userID, sub).
		Delete(&entity.UserMemory{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, apperrors.CodeDatabaseError, "淘汰偏好记忆失败")
	}
	return result.RowsAffected, nil
}

func (r *userMemoryRepo) DeleteByUser(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "UserMemoryRepo.DeleteByUser")
	defer span.End()

	if err := getDB(ctx, r.db).Where("user_id = ?", userID).Delete(&entity.UserMemory{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "清空偏好记忆失败")
	}
	return nil
}
