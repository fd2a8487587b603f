package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// messageRepo 消息仓储实现
type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓储
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *entity.Message) error {
	ctx, span := tracer.Start(ctx, "MessageRepo.Create")
	defer span.End()

	if err := getDB(ctx, r.db).Create(msg).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建消息失败")
	}
	return nil
}

// ListRecent 取最近 limit 条后反转，保证从旧到新排列
func (r *messageRepo) ListRecent(ctx context.Context, conversationID string, limit int) ([]entity.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageRepo.ListRecent")
	defer span.End()

	var items []entity.Message
	err := getDB(ctx, r.db).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询消息失败")
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID string, page *repository.Pagination) (*repository.PagedResult[entity.Message], error) {
	ctx, span := tracer.Start(ctx, "MessageRepo.ListByConversation")
	defer span.End()

	page.Normalize()
	db := getDB(ctx, r.db)

	var total int64
	if err := db.Model(&entity.Message{}).Where("conversation_id = ?", conversationID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计消息失败")
	}

	var items []entity.Message
	err := db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询消息列表失败")
	}

	return &repository.PagedResult[entity.Message]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (r *messageRepo) DeleteByConversation(ctx context.Context, conversationID string) error {
	ctx, span := tracer.Start(ctx, "MessageRepo.DeleteByConversation")
	defer span.End()

	if err := getDB(ctx, r.db).Where("conversation_id = ?", conversationID).Delete(&entity.Message{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除消息失败")
	}
	return nil
}
