package repository

import (
	"context"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"gorm.io/gorm"
)

// PORepository 采购订单仓库
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// FindAll 查询采购订单列表，page<=0 时不分页
func (r *PORepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var items []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("LOWER(po_number) LIKE ? OR LOWER(supplier) LIKE ?", likePattern(search), likePattern(search))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query, page, pageSize).
		Order("order_date DESC").
		Order("created_at DESC").
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找采购订单
func (r *PORepository) FindByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		return nil, notFound(err)
	}
	return &po, nil
}

// FindByIDForUpdate 事务内加锁读取
func (r *PORepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&po).Error; err != nil {
		return nil, notFound(err)
	}
	return &po, nil
}

// Create 创建采购订单
func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// UpdateRemaining 更新剩余可分配箱数
func (r *PORepository) UpdateRemaining(ctx context.Context, id string, remaining int) error {
	return r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).
		Where("id = ?", id).
		Update("remaining_cartons", remaining).Error
}

// UpdateStatus 更新状态
func (r *PORepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete 删除采购订单
func (r *PORepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PurchaseOrder{}).Error
}

// AllocationRepository 分配记录仓库
type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// FindAll 分配记录，可按PO或协调员过滤
func (r *AllocationRepository) FindAll(ctx context.Context, filters map[string]string) ([]entity.AllocationHistory, error) {
	var items []entity.AllocationHistory
	query := r.db.WithContext(ctx).Model(&entity.AllocationHistory{})
	if poID := filters["po_id"]; poID != "" {
		query = query.Where("po_id = ?", poID)
	}
	if coordinatorID := filters["coordinator_id"]; coordinatorID != "" {
		query = query.Where("coordinator_id = ?", coordinatorID)
	}
	err := query.Order("date DESC").Order("created_at DESC").Find(&items).Error
	return items, err
}

// FindByPO PO的全部分配记录
func (r *AllocationRepository) FindByPO(ctx context.Context, poID string) ([]entity.AllocationHistory, error) {
	var items []entity.AllocationHistory
	err := r.db.WithContext(ctx).Where("po_id = ?", poID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// CreateBatch 批量写入分配记录
func (r *AllocationRepository) CreateBatch(ctx context.Context, items []entity.AllocationHistory) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// DeleteByPO 删除PO的分配记录
func (r *AllocationRepository) DeleteByPO(ctx context.Context, poID string) error {
	return r.db.WithContext(ctx).Where("po_id = ?", poID).Delete(&entity.AllocationHistory{}).Error
}
