package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/Eman21-ctr/milk-management-app/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 登录认证服务
type AuthService struct {
	*base
}

func NewAuthService(b *base) *AuthService {
	return &AuthService{base: b}
}

// SignUpRequest 注册请求
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// SignInRequest 登录请求
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult 登录结果
type AuthResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *entity.User `json:"user"`
}

// SignUp 邮箱注册并直接登录
func (s *AuthService) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResult, error) {
	if !s.opts.AllowSignup {
		return nil, ErrSignupDisabled
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repos.User.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String()[:32],
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(ctx, user)
}

// SignIn 邮箱密码登录
func (s *AuthService) SignIn(ctx context.Context, req *SignInRequest) (*AuthResult, error) {
	user, err := s.repos.User.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *entity.User) (*AuthResult, error) {
	now := s.opts.Now()
	ttl := s.opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	expiresAt := now.Add(ttl)
	claims := &middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    s.opts.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.repos.User.TouchLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login time", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.deps.Events.PublishToUser(user.ID, "session.signed_in", map[string]string{"user_id": user.ID})

	return &AuthResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// SignOut 注销当前token
func (s *AuthService) SignOut(ctx context.Context, claims *middleware.JWTClaims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	expiresAt := s.opts.Now().Add(s.opts.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.repos.RevokedToken.Revoke(ctx, &entity.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}
	s.deps.Events.PublishToUser(claims.UserID, "session.signed_out", map[string]string{"user_id": claims.UserID})
	return nil
}

// Me 当前用户
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	return s.repos.User.FindByID(ctx, userID)
}

// PurgeRevoked 清理过期的注销记录
func (s *AuthService) PurgeRevoked(ctx context.Context) (int64, error) {
	return s.repos.RevokedToken.PurgeExpired(ctx, s.opts.Now())
}
