// Package auth 提供注册登录服务
package auth

import (
	"context"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/utils"
)

// Service 认证服务
type Service struct {
	users repository.UserRepository
	jwt   *utils.JWTManager
	cfg   *config.JWTConfig
}

// NewService 创建认证服务
func NewService(users repository.UserRepository, jwt *utils.JWTManager, cfg *config.JWTConfig) *Service {
	return &Service{users: users, jwt: jwt, cfg: cfg}
}

// Register 注册新用户
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*entity.User, error) {
	user := &entity.User{
		Email:       email,
		DisplayName: displayName,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "密码哈希失败")
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info(ctx, "用户注册成功", "user_id", user.ID)
	return user, nil
}

// Login 登录并签发令牌对
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, *utils.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUserNotFound) {
			return nil, nil, apperrors.New(apperrors.CodeUnauthorized, "邮箱或密码错误")
		}
		return nil, nil, err
	}
	if !user.CheckPassword(password) {
		return nil, nil, apperrors.New(apperrors.CodeUnauthorized, "邮箱或密码错误")
	}

	pair, err := s.jwt.GenerateTokenPair(user.ID, user.Email, s.cfg.Expiration, s.cfg.RefreshExpiration)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternalError, "签发令牌失败")
	}
	return user, pair, nil
}

// Refresh 用 refresh 令牌换新令牌对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeTokenInvalid, "refresh 令牌无效")
	}
	if claims.Type != "refresh" {
		return nil, apperrors.New(apperrors.CodeTokenInvalid, "令牌类型错误")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwt.GenerateTokenPair(user.ID, user.Email, s.cfg.Expiration, s.cfg.RefreshExpiration)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "签发令牌失败")
	}
	return pair, nil
}
