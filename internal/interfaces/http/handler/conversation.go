package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/chat"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/middleware"
)

// ConversationHandler 会话处理器
type ConversationHandler struct {
	svc *chat.ConversationService
}

// NewConversationHandler 创建会话处理器
func NewConversationHandler(svc *chat.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// List 分页列出当前用户的会话
func (h *ConversationHandler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), middleware.UserID(c), dto.BindPage(c))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, result)
}

// Get 查询单个会话
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, conv)
}

// Messages 分页列出会话消息
func (h *ConversationHandler) Messages(c *gin.Context) {
	result, err := h.svc.Messages(c.Request.Context(), middleware.UserID(c), c.Param("id"), dto.BindPage(c))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, result)
}

// Delete 删除会话
func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, nil)
}
