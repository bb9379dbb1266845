package service

import (
	"context"
	"errors"
	"time"

	"pulseboard/internal/conf"
	"pulseboard/internal/dto"
	"pulseboard/internal/model"
	"pulseboard/internal/repository"
	"pulseboard/internal/utils"

	"github.com/google/uuid"
)

// TokenStore 刷新令牌 JTI 存储，生产实现在 data 层 (Redis)
type TokenStore interface {
	Set(ctx context.Context, userID uint, jti string, ttl time.Duration) error
	Get(ctx context.Context, userID uint) (string, error)
	Delete(ctx context.Context, userID uint) error
}

type AuthService interface {
	Register(req dto.RegisterReq) (*dto.UserResp, error)
	IssueTokens(ctx context.Context, req dto.TokenReq) (*dto.TokenResp, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResp, error)
	ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordReq) error
}

type authService struct {
	repo   repository.UserRepository
	tokens TokenStore
	cfg    conf.AuthConfig
}

func NewAuthService(repo repository.UserRepository, tokens TokenStore, cfg conf.AuthConfig) AuthService {
	return &authService{repo: repo, tokens: tokens, cfg: cfg}
}

// Register 注册业务逻辑，新用户固定为 CONTRIBUTOR
func (s *authService) Register(req dto.RegisterReq) (*dto.UserResp, error) {
	// 1. 业务检查：用户名/邮箱是否已占用
	if s.repo.IsUsernameExist(req.Username) {
		return nil, errValidation("A user with that username already exists")
	}
	if s.repo.IsEmailExist(req.Email) {
		return nil, errValidation("A user with that email already exists")
	}

	// 2. 密码加密
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.New("password hashing failed")
	}

	// 3. 组装 Model
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Bio:          req.Bio,
		Role:         model.RoleContributor,
	}

	// 4. 落库
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return dto.NewUserResp(user), nil
}

// IssueTokens 登录并签发访问/刷新令牌对
func (s *authService) IssueTokens(ctx context.Context, req dto.TokenReq) (*dto.TokenResp, error) {
	// 1. 查用户
	user, err := s.repo.GetByUsername(req.Username)
	if err != nil {
		return nil, errUnauthorized("No active account found with the given credentials")
	}

	// 2. 比对密码
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, errUnauthorized("No active account found with the given credentials")
	}

	// 3. 签发令牌对
	return s.mintPair(ctx, user)
}

// Refresh 刷新令牌轮换：校验 JTI 是否为当前有效的那一枚，
// 成功后旧令牌立即作废
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResp, error) {
	claims, err := utils.ParseToken(s.cfg.JWTSecret, refreshToken)
	if err != nil || claims.TokenType != utils.TokenTypeRefresh {
		return nil, errUnauthorized("Token is invalid or expired")
	}

	stored, err := s.tokens.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if stored == "" || stored != claims.ID {
		return nil, errUnauthorized("Token is invalid or expired")
	}

	user, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return nil, errUnauthorized("Token is invalid or expired")
	}

	return s.mintPair(ctx, user)
}

// ChangePassword 校验旧密码后重置，并作废所有已签发的刷新令牌
func (s *authService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordReq) error {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return errUnauthorized("User not found")
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return errValidation("Incorrect old password")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return errors.New("password hashing failed")
	}

	user.PasswordHash = hash
	if err := s.repo.Save(user); err != nil {
		return err
	}

	// 改密后强制所有已登录端重新认证
	return s.tokens.Delete(ctx, userID)
}

func (s *authService) mintPair(ctx context.Context, user *model.User) (*dto.TokenResp, error) {
	access, err := utils.GenerateAccessToken(s.cfg.JWTSecret, user.ID, user.Username, user.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	jti := uuid.NewString()
	refresh, err := utils.GenerateRefreshToken(s.cfg.JWTSecret, user.ID, jti, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	// 覆盖写入：同一用户旧的刷新令牌随之失效
	if err := s.tokens.Set(ctx, user.ID, jti, s.cfg.RefreshTTL); err != nil {
		return nil, err
	}

	return &dto.TokenResp{Access: access, Refresh: refresh}, nil
}
