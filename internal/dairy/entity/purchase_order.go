package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder 采购订单（向供应商订货）
type PurchaseOrder struct {
	ID               string          `json:"id" gorm:"primaryKey;size:32"`
	PONumber         string          `json:"po_number" gorm:"size:40;uniqueIndex;not null"`
	Supplier         string          `json:"supplier" gorm:"size:200;not null"`
	OrderDate        time.Time       `json:"order_date" gorm:"not null;index"`
	Batches          int             `json:"batches" gorm:"not null"`
	TotalCartons     int             `json:"total_cartons" gorm:"not null"`
	TotalPrice       decimal.Decimal `json:"total_price" gorm:"type:decimal(18,2);not null"`
	Status           string          `json:"status" gorm:"size:20;default:sent"` // draft/sent/received
	RemainingCartons int             `json:"remaining_cartons" gorm:"not null"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PO状态
const (
	POStatusDraft    = "draft"
	POStatusSent     = "sent"
	POStatusReceived = "received"
)

// POStatuses PO状态全集
var POStatuses = []string{POStatusDraft, POStatusSent, POStatusReceived}

// ValidPOTransitions 合法的PO状态流转
var ValidPOTransitions = map[string][]string{
	POStatusDraft: {POStatusSent, POStatusReceived},
	POStatusSent:  {POStatusReceived},
}

// AllocatedCartons 已分配箱数
func (po *PurchaseOrder) AllocatedCartons() int {
	return po.TotalCartons - po.RemainingCartons
}

// AllocationHistory 分配记录（PO → 协调员）
type AllocationHistory struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	POID          string    `json:"po_id" gorm:"column:po_id;size:32;not null;index"`
	CoordinatorID string    `json:"coordinator_id" gorm:"size:32;not null;index"`
	Cartons       int       `json:"cartons" gorm:"not null"`
	Date          time.Time `json:"date" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

func (AllocationHistory) TableName() string {
	return "allocation_history"
}
