package entity

import "time"

// User 登录用户
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Email        string     `json:"email" gorm:"size:200;uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"size:200"`
	PasswordHash string     `json:"-" gorm:"size:100;not null"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// RevokedToken 已注销的token
type RevokedToken struct {
	JTI       string    `json:"jti" gorm:"primaryKey;size:64"`
	UserID    string    `json:"user_id" gorm:"size:32;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

// AllModels 需要迁移的全部表
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&RevokedToken{},
		&PurchaseOrder{},
		&AllocationHistory{},
		&Coordinator{},
		&CoordinatorSPPG{},
		&Kitchen{},
		&Distribution{},
		&Invoice{},
		&DocumentSequence{},
	}
}
