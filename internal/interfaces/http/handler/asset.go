package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/middleware"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// AssetHandler 生成资产处理器
type AssetHandler struct {
	assets repository.AssetRepository
}

// NewAssetHandler 创建资产处理器
func NewAssetHandler(assets repository.AssetRepository) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// List 分页列出当前用户的生成资产
func (h *AssetHandler) List(c *gin.Context) {
	result, err := h.assets.ListByUser(c.Request.Context(), middleware.UserID(c), dto.BindPage(c))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, result)
}

// Get 查询单个资产
func (h *AssetHandler) Get(c *gin.Context) {
	asset, err := h.assets.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.Error(c, err)
		return
	}
	if asset.UserID != middleware.UserID(c) {
		dto.Error(c, apperrors.ErrForbidden)
		return
	}
	dto.Success(c, asset)
}
