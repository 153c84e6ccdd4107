package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户仓库
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail 按邮箱查找
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// FindByID 根据ID查找用户
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// TouchLogin 记录登录时间
func (r *UserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// RevokedTokenRepository 注销token仓库
type RevokedTokenRepository struct {
	db *gorm.DB
}

func NewRevokedTokenRepository(db *gorm.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke 记录注销，重复注销忽略
func (r *RevokedTokenRepository) Revoke(ctx context.Context, t *entity.RevokedToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(t).Error
}

// IsRevoked token是否已注销
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.RevokedToken{}).Where("jti = ?", jti).Count(&n).Error
	return n > 0, err
}

// PurgeExpired 清理已过期的记录
func (r *RevokedTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var items []entity.RevokedToken
	if err := r.db.WithContext(ctx).Find(&items).Error; err != nil {
		return 0, err
	}
	var expired []string
	for _, t := range items {
		if t.ExpiresAt.Before(now) {
			expired = append(expired, t.JTI)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("jti IN ?", expired).Delete(&entity.RevokedToken{})
	return res.RowsAffected, res.Error
}
