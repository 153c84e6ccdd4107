package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	db *gorm.DB

	PO           *PORepository
	Allocation   *AllocationRepository
	Coordinator  *CoordinatorRepository
	Kitchen      *KitchenRepository
	Distribution *DistributionRepository
	Invoice      *InvoiceRepository
	Sequence     *SequenceRepository
	User         *UserRepository
	RevokedToken *RevokedTokenRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		PO:           NewPORepository(db),
		Allocation:   NewAllocationRepository(db),
		Coordinator:  NewCoordinatorRepository(db),
		Kitchen:      NewKitchenRepository(db),
		Distribution: NewDistributionRepository(db),
		Invoice:      NewInvoiceRepository(db),
		Sequence:     NewSequenceRepository(db),
		User:         NewUserRepository(db),
		RevokedToken: NewRevokedTokenRepository(db),
	}
}

// DB 底层连接
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// Transaction 在同一事务内执行，fn收到绑定事务的仓库集合
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// forUpdate 行锁（sqlite方言会忽略）
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// likePattern 不区分大小写的模糊匹配
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page <= 0 || pageSize <= 0 {
		return query
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
