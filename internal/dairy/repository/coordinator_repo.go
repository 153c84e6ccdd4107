package repository

import (
	"context"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"gorm.io/gorm"
)

// CoordinatorRepository 协调员仓库
type CoordinatorRepository struct {
	db *gorm.DB
}

func NewCoordinatorRepository(db *gorm.DB) *CoordinatorRepository {
	return &CoordinatorRepository{db: db}
}

// FindAll 协调员列表（含sppg_ids）
func (r *CoordinatorRepository) FindAll(ctx context.Context, search string) ([]entity.Coordinator, error) {
	var items []entity.Coordinator
	query := r.db.WithContext(ctx).Model(&entity.Coordinator{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ? OR LOWER(region) LIKE ?", likePattern(search), likePattern(search))
	}
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	if err := r.loadSPPGIDs(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID 根据ID查找协调员
func (r *CoordinatorRepository) FindByID(ctx context.Context, id string) (*entity.Coordinator, error) {
	var c entity.Coordinator
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	items := []entity.Coordinator{c}
	if err := r.loadSPPGIDs(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// FindByIDForUpdate 事务内加锁读取，连同负责的厨房
func (r *CoordinatorRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Coordinator, error) {
	var c entity.Coordinator
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	items := []entity.Coordinator{c}
	if err := r.loadSPPGIDs(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create 创建协调员
func (r *CoordinatorRepository) Create(ctx context.Context, c *entity.Coordinator) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// UpdateProfile 更新资料字段，库存不在此更新
func (r *CoordinatorRepository) UpdateProfile(ctx context.Context, c *entity.Coordinator) error {
	return r.db.WithContext(ctx).Model(&entity.Coordinator{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":           c.Name,
			"region":         c.Region,
			"contact_person": c.ContactPerson,
			"contact_phone":  c.ContactPhone,
		}).Error
}

// UpdateStock 写入库存
func (r *CoordinatorRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	return r.db.WithContext(ctx).Model(&entity.Coordinator{}).
		Where("id = ?", id).
		Update("stock", stock).Error
}

// ReplaceSPPGs 重置协调员负责的厨房
func (r *CoordinatorRepository) ReplaceSPPGs(ctx context.Context, coordinatorID string, sppgIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("coordinator_id = ?", coordinatorID).Delete(&entity.CoordinatorSPPG{}).Error; err != nil {
		return err
	}
	if len(sppgIDs) == 0 {
		return nil
	}
	links := make([]entity.CoordinatorSPPG, 0, len(sppgIDs))
	seen := make(map[string]bool, len(sppgIDs))
	for _, id := range sppgIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, entity.CoordinatorSPPG{CoordinatorID: coordinatorID, SPPGID: id})
	}
	if len(links) == 0 {
		return nil
	}
	return db.Create(&links).Error
}

// SumStock 全部协调员库存合计
func (r *CoordinatorRepository) SumStock(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Coordinator{}).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&total).Error
	return total, err
}

func (r *CoordinatorRepository) loadSPPGIDs(ctx context.Context, items []entity.Coordinator) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
		items[i].SPPGIDs = []string{}
	}
	var links []entity.CoordinatorSPPG
	if err := r.db.WithContext(ctx).Where("coordinator_id IN ?", ids).Order("sppg_id ASC").Find(&links).Error; err != nil {
		return err
	}
	index := make(map[string]int, len(items))
	for i := range items {
		index[items[i].ID] = i
	}
	for _, l := range links {
		if i, ok := index[l.CoordinatorID]; ok {
			items[i].SPPGIDs = append(items[i].SPPGIDs, l.SPPGID)
		}
	}
	return nil
}

// KitchenRepository 厨房(SPPG)仓库
type KitchenRepository struct {
	db *gorm.DB
}

func NewKitchenRepository(db *gorm.DB) *KitchenRepository {
	return &KitchenRepository{db: db}
}

// FindAll 厨房列表
func (r *KitchenRepository) FindAll(ctx context.Context, search string) ([]entity.Kitchen, error) {
	var items []entity.Kitchen
	query := r.db.WithContext(ctx).Model(&entity.Kitchen{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ? OR LOWER(district) LIKE ?", likePattern(search), likePattern(search))
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

// FindByID 根据ID查找厨房
func (r *KitchenRepository) FindByID(ctx context.Context, id string) (*entity.Kitchen, error) {
	var k entity.Kitchen
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&k).Error; err != nil {
		return nil, notFound(err)
	}
	return &k, nil
}

// CountByIDs 已存在的厨房数量
func (r *KitchenRepository) CountByIDs(ctx context.Context, ids []string) (int64, error) {
	var n int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&entity.Kitchen{}).Where("id IN ?", ids).Count(&n).Error
	return n, err
}

// Create 创建厨房
func (r *KitchenRepository) Create(ctx context.Context, k *entity.Kitchen) error {
	return r.db.WithContext(ctx).Create(k).Error
}

// Update 更新厨房
func (r *KitchenRepository) Update(ctx context.Context, k *entity.Kitchen) error {
	return r.db.WithContext(ctx).Save(k).Error
}
