package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/chat"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/middleware"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	orchestrator *chat.Orchestrator
}

// NewChatHandler 创建对话处理器
func NewChatHandler(orchestrator *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

// Turn 执行一轮对话
//
// 响应要么是一个澄清问题，要么是最终提示词加生成产物。
func (h *ChatHandler) Turn(c *gin.Context) {
	var req dto.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	result, err := h.orchestrator.RunTurn(c.Request.Context(), &chat.TurnRequest{
		UserID:         middleware.UserID(c),
		ConversationID: req.ConversationID,
		Message:        req.Message,
		ImageURLs:      req.ImageURLs,
	})
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, result)
}
