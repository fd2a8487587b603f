package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// Store 生成产物存储接口
type Store interface {
	// Save 落盘一份产物，返回对外可访问的 URL
	Save(ctx context.Context, ext string, data []byte) (string, error)
}

// LocalStore 本地磁盘存储
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 创建本地存储，目录不存在时创建
func NewLocalStore(cfg *config.StorageConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &LocalStore{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Dir 存储根目录，供静态文件路由挂载
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(_ context.Context, ext string, data []byte) (string, error) {
	name := uuid.NewString() + "." + strings.TrimPrefix(ext, ".")
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeStorageError, "写入产物文件失败")
	}
	return s.baseURL + "/" + name, nil
}
