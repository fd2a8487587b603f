package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// userRepo 用户仓储实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "UserRepo.Create")
	defer span.End()

	if err := getDB(ctx, r.db).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.New(apperrors.CodeUserAlreadyExists, "邮箱已被注册")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建用户失败")
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepo.GetByID")
	defer span.End()

	var user entity.User
	if err := getDB(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUserNotFound, "用户不存在")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepo.GetByEmail")
	defer span.End()

	var user entity.User
	if err := getDB(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUserNotFound, "用户不存在")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "UserRepo.Update")
	defer span.End()

	if err := getDB(ctx, r.db).Save(user).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "更新用户失败")
	}
	return nil
}
