package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// conversationRepo 会话仓储实现
type conversationRepo struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话仓储
func NewConversationRepository(db *gorm.DB) repository.ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(ctx context.Context, conv *entity.Conversation) error {
	ctx, span := tracer.Start(ctx, "ConversationRepo.Create")
	defer span.End()

	if err := getDB(ctx, r.db).Create(conv).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建会话失败")
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	ctx, span := tracer.Start(ctx, "ConversationRepo.GetByID")
	defer span.End()

	var conv entity.Conversation
	if err := getDB(ctx, r.db).Where("id = ?", id).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeConversationNotFound, "会话不存在")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询会话失败")
	}
	return &conv, nil
}

// GetByIDForUpdate 查询并对会话行加 FOR UPDATE 锁
//
// 必须在事务内调用，同一会话的并发回合在此处串行。
func (r *conversationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Conversation, error) {
	ctx, span := tracer.Start(ctx, "ConversationRepo.GetByIDForUpdate")
	defer span.End()

	var conv entity.Conversation
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeConversationNotFound, "会话不存在")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询会话失败")
	}
	return &conv, nil
}

func (r *conversationRepo) ListByUser(ctx context.Context, userID string, page *repository.Pagination) (*repository.PagedResult[entity.Conversation], error) {
	ctx, span := tracer.Start(ctx, "ConversationRepo.ListByUser")
	defer span.End()

	page.Normalize()
	db := getDB(ctx, r.db)

	var total int64
	if err := db.Model(&entity.Conversation{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计会话失败")
	}

	var items []entity.Conversation
	err := db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询会话列表失败")
	}

	return &repository.PagedResult[entity.Conversation]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (r *conversationRepo) Update(ctx context.Context, conv *entity.Conversation) error {
	ctx, span := tracer.Start(ctx, "ConversationRepo.Update")
	defer span.End()

	if err := getDB(ctx, r.db).Save(conv).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "更新会话失败")
	}
	return nil
}

func (r *conversationRepo) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "ConversationRepo.Delete")
	defer span.End()

	if err := getDB(ctx, r.db).Where("id = ?", id).Delete(&entity.Conversation{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除会话失败")
	}
	return nil
}
