package repository

import (
	"context"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
)

// ConversationStateRepository 协商状态仓储接口
type ConversationStateRepository interface {
	// Upsert 按 conversation_id 覆盖写入当前理解
	Upsert(ctx context.Context, state *entity.ConversationState) error
	// GetByConversation 不存在时返回 nil 而非错误
	GetByConversation(ctx context.Context, conversationID string) (*entity.ConversationState, error)
	// DeleteByConversation 删除会话的协商状态，记录不存在不算错误
	DeleteByConversation(ctx context.Context, conversationID string) error
}
