// Package history 提供规划器的历史窗口服务
package history

import (
	"context"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	wfmodel "github.com/VenkataAditya897/vizzy-conversational/internal/workflow/model"
)

// DefaultWindowSize 默认注入规划器的最近消息条数
const DefaultWindowSize = 20

// Service 历史窗口服务
//
// 只向规划器暴露最近的一段对话，长会话不会无限撑大上下文。
type Service struct {
	messages   repository.MessageRepository
	windowSize int
}

// NewService 创建历史窗口服务
func NewService(messages repository.MessageRepository, windowSize int) *Service {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Service{messages: messages, windowSize: windowSize}
}

// Window 返回会话的历史窗口
//
// 空白消息被跳过，返回结果按时间从旧到新排列，最多 windowSize 条。
func (s *Service) Window(ctx context.Context, conversationID string) ([]wfmodel.HistoryMessage, error) {
	msgs, err := s.messages.ListRecent(ctx, conversationID, s.windowSize)
	if err != nil {
		return nil, err
	}

	window := make([]wfmodel.HistoryMessage, 0, len(msgs))
	for i := range msgs {
		if msgs[i].Empty() {
			continue
		}
		window = append(window, wfmodel.HistoryMessage{
			Role:    string(msgs[i].Role),
			Content: msgs[i].Content,
		})
	}
	return window, nil
}
