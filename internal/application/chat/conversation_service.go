package chat

import (
	"context"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/metrics"
)

// ConversationService 会话查询与管理服务
type ConversationService struct {
	tx            repository.Transactor
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	states        repository.ConversationStateRepository
}

// NewConversationService 创建会话服务
func NewConversationService(
	tx repository.Transactor,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	states repository.ConversationStateRepository,
) *ConversationService {
	return &ConversationService{
		tx:            tx,
		conversations: conversations,
		messages:      messages,
		states:        states,
	}
}

// List 分页列出用户会话
func (s *ConversationService) List(ctx context.Context, userID string, page *repository.Pagination) (*repository.PagedResult[entity.Conversation], error) {
	return s.conversations.ListByUser(ctx, userID, page)
}

// Get 查询单个会话，校验归属
func (s *ConversationService) Get(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "无权访问该会话")
	}
	return conv, nil
}

// Messages 分页列出会话消息
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID string, page *repository.Pagination) (*repository.PagedResult[entity.Message], error) {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(ctx, conversationID, page)
}

// Delete 删除会话及其消息与协商状态
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return err
	}

	hadState := false
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		state, err := s.states.GetByConversation(txCtx, conv.ID)
		if err != nil {
			return err
		}
		hadState = state != nil

		if err := s.states.DeleteByConversation(txCtx, conv.ID); err != nil {
			return err
		}
		if err := s.messages.DeleteByConversation(txCtx, conv.ID); err != nil {
			return err
		}
		if err := s.conversations.Delete(txCtx, conv.ID); err != nil {
			return err
		}
		if hadState {
			metrics.ActiveNegotiations.Dec()
		}
		return nil
	})
}
