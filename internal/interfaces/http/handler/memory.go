package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/memory"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/middleware"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// MemoryHandler 偏好记忆处理器
type MemoryHandler struct {
	svc *memory.Service
}

// NewMemoryHandler 创建偏好记忆处理器
func NewMemoryHandler(svc *memory.Service) *MemoryHandler {
	return &MemoryHandler{svc: svc}
}

// List 列出当前用户的偏好记忆，从新到旧
func (h *MemoryHandler) List(c *gin.Context) {
	items, err := h.svc.Recent(c.Request.Context(), middleware.UserID(c), 0)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, gin.H{"items": items})
}

// Append 手动追加偏好记忆
func (h *MemoryHandler) Append(c *gin.Context) {
	var req dto.AppendMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	entries := make([]memory.Entry, 0, len(req.Items))
	for _, item := range req.Items {
		entries = append(entries, memory.Entry{
			Type:     entity.MemoryType(item.Type),
			Text:     item.Text,
			ImageURL: item.ImageURL,
		})
	}
	if err := h.svc.Append(c.Request.Context(), middleware.UserID(c), entries); err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, nil)
}

// Reset 清空当前用户的偏好记忆
func (h *MemoryHandler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context(), middleware.UserID(c)); err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, nil)
}
