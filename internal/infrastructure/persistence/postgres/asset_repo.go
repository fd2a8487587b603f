package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// assetRepo 生成资产仓储实现
type assetRepo struct {
	db *gorm.DB
}

// NewAssetRepository 创建生成资产仓储
func NewAssetRepository(db *gorm.DB) repository.AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, asset *entity.Asset) error {
	ctx, span := tracer.Start(ctx, "AssetRepo.Create")
	defer span.End()

	if err := getDB(ctx, r.db).Create(asset).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建资产失败")
	}
	return nil
}

func (r *assetRepo) CreateBatch(ctx context.Context, assets []*entity.Asset) error {
	ctx, span := tracer.Start(ctx, "AssetRepo.CreateBatch")
	defer span.End()

	if len(assets) == 0 {
		return nil
	}
	if err := getDB(ctx, r.db).Create(assets).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "批量创建资产失败")
	}
	return nil
}

func (r *assetRepo) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "AssetRepo.GetByID")
	defer span.End()

	var asset entity.Asset
	if err := getDB(ctx, r.db).Where("id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeAssetNotFound, "资产不存在")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询资产失败")
	}
	return &asset, nil
}

func (r *assetRepo) ListByBatch(ctx context.Context, batchID string) ([]entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "AssetRepo.ListByBatch")
	defer span.End()

	var items []entity.Asset
	err := getDB(ctx, r.db).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询批次资产失败")
	}
	return items, nil
}

func (r *assetRepo) ListByUser(ctx context.Context, userID string, page *repository.Pagination) (*repository.PagedResult[entity.Asset], error) {
	ctx, span := tracer.Start(ctx, "AssetRepo.ListByUser")
	defer span.End()

	page.Normalize()
	db := getDB(ctx, r.db)

	var total int64
	if err := db.Model(&entity.Asset{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计资产失败")
	}

	var items []entity.Asset
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询资产列表失败")
	}

	return &repository.PagedResult[entity.Asset]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (r *assetRepo) Update(ctx context.Context, asset *entity.Asset) error {
	ctx, span := tracer.Start(ctx, "AssetRepo.Update")
	defer span.End()

	if err := getDB(ctx, r.db).Save(asset).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "更新资产失败")
	}
	return nil
}
