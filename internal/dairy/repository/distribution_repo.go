package repository

import (
	"context"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DistributionRepository 配送单仓库
type DistributionRepository struct {
	db *gorm.DB
}

func NewDistributionRepository(db *gorm.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// FindAll 配送单列表
func (r *DistributionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Distribution, int64, error) {
	var items []entity.Distribution
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Distribution{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if coordinatorID := filters["coordinator_id"]; coordinatorID != "" {
		query = query.Where("coordinator_id = ?", coordinatorID)
	}
	if sppgID := filters["sppg_id"]; sppgID != "" {
		query = query.Where("sppg_id = ?", sppgID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("LOWER(surat_jalan_number) LIKE ? OR LOWER(bast_number) LIKE ?", likePattern(search), likePattern(search))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query, page, pageSize).
		Order("distribution_date DESC").
		Order("created_at DESC").
		Find(&items).Error

	return items, total, err
}

// FindInvoiceable 已送达未开票的配送单
func (r *DistributionRepository) FindInvoiceable(ctx context.Context) ([]entity.Distribution, error) {
	var items []entity.Distribution
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.DistributionStatusDelivered).
		Where("invoice_id IS NULL OR invoice_id = ''").
		Order("distribution_date DESC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找配送单
func (r *DistributionRepository) FindByID(ctx context.Context, id string) (*entity.Distribution, error) {
	var d entity.Distribution
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// FindByIDForUpdate 事务内加锁读取
func (r *DistributionRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Distribution, error) {
	var d entity.Distribution
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// Create 创建配送单
func (r *DistributionRepository) Create(ctx context.Context, d *entity.Distribution) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// UpdateStatus 更新状态
func (r *DistributionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.Distribution{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// LinkInvoice 关联发票
func (r *DistributionRepository) LinkInvoice(ctx context.Context, id, invoiceID string) error {
	return r.db.WithContext(ctx).Model(&entity.Distribution{}).
		Where("id = ?", id).
		Update("invoice_id", invoiceID).Error
}

// InvoiceRepository 发票仓库
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindAll 发票列表
func (r *InvoiceRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Invoice, int64, error) {
	var items []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if sppgID := filters["sppg_id"]; sppgID != "" {
		query = query.Where("sppg_id = ?", sppgID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("LOWER(invoice_number) LIKE ?", likePattern(search))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query, page, pageSize).
		Order("issue_date DESC").
		Order("created_at DESC").
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找发票
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// FindByIDForUpdate 事务内加锁读取
func (r *InvoiceRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// ExistsForDistribution 配送单是否已开票
func (r *InvoiceRepository) ExistsForDistribution(ctx context.Context, distributionID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("distribution_id = ?", distributionID).
		Count(&n).Error
	return n > 0, err
}

// FindUnpaidDueBefore 到期未付的发票
func (r *InvoiceRepository) FindUnpaidDueBefore(ctx context.Context, asOf time.Time) ([]entity.Invoice, error) {
	var items []entity.Invoice
	if err := r.db.WithContext(ctx).Where("status = ?", entity.InvoiceStatusUnpaid).Find(&items).Error; err != nil {
		return nil, err
	}
	// 时间比较放在Go侧，避免sqlite按字符串比较
	due := items[:0]
	for _, inv := range items {
		if inv.DueDate.Before(asOf) {
			due = append(due, inv)
		}
	}
	return due, nil
}

// Create 创建发票
func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// UpdateStatus 更新状态及付款时间
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id, status string, paidAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  status,
			"paid_at": paidAt,
		}).Error
}

// SequenceRepository 单据流水号仓库
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next 取下一个流水号，需在业务事务内调用
func (r *SequenceRepository) Next(ctx context.Context, docType string, year, month int) (int, error) {
	db := r.db.WithContext(ctx)

	seed := entity.DocumentSequence{DocType: docType, Year: year, Month: month}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}

	where := "doc_type = ? AND seq_year = ? AND seq_month = ?"
	if err := db.Model(&entity.DocumentSequence{}).
		Where(where, docType, year, month).
		Updates(map[string]interface{}{
			"value":      gorm.Expr("value + 1"),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return 0, err
	}

	var seq entity.DocumentSequence
	if err := db.Where(where, docType, year, month).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
