package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/auth"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Created(c, toUserInfo(user))
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.LoginResponse{
		User:         toUserInfo(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh 刷新令牌
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, pair)
}

func toUserInfo(user *entity.User) dto.UserInfo {
	return dto.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}
