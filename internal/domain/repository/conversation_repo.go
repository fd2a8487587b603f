package repository

import (
	"context"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
)

// ConversationRepository 会话仓储接口
type ConversationRepository interface {
	Create(ctx context.Context, conv *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// GetByIDForUpdate 按 ID 查询并加行锁，用于回合串行化
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Conversation, error)
	ListByUser(ctx context.Context, userID string, page *Pagination) (*PagedResult[entity.Conversation], error)
	Update(ctx context.Context, conv *entity.Conversation) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository 消息仓储接口
type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	// ListRecent 返回会话最近 limit 条消息，按时间从旧到新排列
	ListRecent(ctx context.Context, conversationID string, limit int) ([]entity.Message, error)
	ListByConversation(ctx context.Context, conversationID string, page *Pagination) (*PagedResult[entity.Message], error)
	DeleteByConversation(ctx context.Context, conversationID string) error
}
