package handler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/media"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/dto"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// maxUploadBytes 单张参考图大小上限
const maxUploadBytes = 10 << 20

// allowedImageExts 允许上传的图片扩展名
var allowedImageExts = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
}

// UploadHandler 参考图上传处理器
type UploadHandler struct {
	store *media.LocalStore
}

// NewUploadHandler 创建参考图上传处理器
func NewUploadHandler(store *media.LocalStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Image 上传一张参考图，返回可在对话中引用的公开 URL
func (h *UploadHandler) Image(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail("缺少 image 文件字段"))
		return
	}
	if file.Size > maxUploadBytes {
		dto.Error(c, apperrors.Validation("图片大小超出 10MB 限制"))
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if !allowedImageExts[ext] {
		dto.Error(c, apperrors.Validation("不支持的图片格式: "+ext))
		return
	}

	src, err := file.Open()
	if err != nil {
		dto.Error(c, apperrors.Wrap(err, apperrors.CodeStorageError, "读取上传文件失败"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		dto.Error(c, apperrors.Wrap(err, apperrors.CodeStorageError, "读取上传文件失败"))
		return
	}

	url, err := h.store.Save(c.Request.Context(), ext, data)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, gin.H{"url": url})
}
