package repository

import (
	"context"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
)

// AssetRepository 生成资产仓储接口
type AssetRepository interface {
	Create(ctx context.Context, asset *entity.Asset) error
	CreateBatch(ctx context.Context, assets []*entity.Asset) error
	GetByID(ctx context.Context, id string) (*entity.Asset, error)
	ListByBatch(ctx context.Context, batchID string) ([]entity.Asset, error)
	ListByUser(ctx context.Context, userID string, page *Pagination) (*PagedResult[entity.Asset], error)
	Update(ctx context.Context, asset *entity.Asset) error
}
