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

// conversationStateRepo 协商状态仓储实现
type conversationStateRepo struct {
	db *gorm.DB
}

// NewConversationStateRepository 创建协商状态仓储
func NewConversationStateRepository(db *gorm.DB) repository.ConversationStateRepository {
	return &conversationStateRepo{db: db}
}

// Upsert 按 conversation_id 冲突时整体覆盖草稿与待答问题
func (r *conversationStateRepo) Upsert(ctx context.Context, state *entity.ConversationState) error {
	ctx, span := tracer.Start(ctx, "ConversationStateRepo.Upsert")
	defer span.End()

	err := getDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"draft_prompt", "pending_questions", "updated_at"}),
		}).
		Create(state).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入协商状态失败")
	}
	return nil
}

func (r *conversationStateRepo) GetByConversation(ctx context.Context, conversationID string) (*entity.ConversationState, error) {
	ctx, span := tracer.Start(ctx, "ConversationStateRepo.GetByConversation")
	defer span.End()

	var state entity.ConversationState
	err := getDB(ctx, r.db).Where("conversation_id = ?", conversationID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询协商状态失败")
	}
	return &state, nil
}

func (r *conversationStateRepo) DeleteByConversation(ctx context.Context, conversationID string) error {
	ctx, span := tracer.Start(ctx, "ConversationStateRepo.DeleteByConversation")
	defer span.End()

	err := getDB(ctx, r.db).
		Where("conversation_id = ?", conversationID).
		Delete(&entity.ConversationState{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除协商状态失败")
	}
	return nil
}
