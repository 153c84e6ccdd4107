package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Distribution 配送单（协调员 → 厨房）
type Distribution struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	DistributionDate time.Time `json:"distribution_date" gorm:"not null;index"`
	CoordinatorID    string    `json:"coordinator_id" gorm:"size:32;not null;index"`
	SPPGID           string    `json:"sppg_id" gorm:"column:sppg_id;size:32;not null;index"`
	Cartons          int       `json:"cartons" gorm:"not null"`
	Status           string    `json:"status" gorm:"size:20;default:pending"` // pending/in_transit/delivered
	SuratJalanNumber string    `json:"surat_jalan_number" gorm:"size:40;uniqueIndex;not null"`
	BASTNumber       string    `json:"bast_number" gorm:"column:bast_number;size:40;uniqueIndex;not null"`
	InvoiceID        *string   `json:"invoice_id" gorm:"size:32"`
	CreatedBy        string    `json:"created_by" gorm:"size:32"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Distribution) TableName() string {
	return "distributions"
}

// 配送状态
const (
	DistributionStatusPending   = "pending"
	DistributionStatusInTransit = "in_transit"
	DistributionStatusDelivered = "delivered"
)

// DistributionStatuses 配送状态全集
var DistributionStatuses = []string{DistributionStatusPending, DistributionStatusInTransit, DistributionStatusDelivered}

// ValidDistributionTransitions 合法的配送状态流转
var ValidDistributionTransitions = map[string][]string{
	DistributionStatusPending:   {DistributionStatusInTransit, DistributionStatusDelivered},
	DistributionStatusInTransit: {DistributionStatusDelivered},
}

// Invoiceable 已送达且尚未开票
func (d *Distribution) Invoiceable() bool {
	return d.Status == DistributionStatusDelivered && (d.InvoiceID == nil || *d.InvoiceID == "")
}

// Invoice 发票（对厨房收款）
type Invoice struct {
	ID             string          `json:"id" gorm:"primaryKey;size:32"`
	InvoiceNumber  string          `json:"invoice_number" gorm:"size:40;uniqueIndex;not null"`
	DistributionID string          `json:"distribution_id" gorm:"size:32;uniqueIndex;not null"`
	SPPGID         string          `json:"sppg_id" gorm:"column:sppg_id;size:32;not null;index"`
	IssueDate      time.Time       `json:"issue_date" gorm:"not null;index"`
	DueDate        time.Time       `json:"due_date" gorm:"not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Status         string          `json:"status" gorm:"size:20;default:unpaid"` // unpaid/paid/overdue
	PaidAt         *time.Time      `json:"paid_at"`
	CreatedBy      string          `json:"created_by" gorm:"size:32"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// 发票状态
const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// InvoiceStatuses 发票状态全集
var InvoiceStatuses = []string{InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusOverdue}

// ValidInvoiceTransitions 合法的发票状态流转
var ValidInvoiceTransitions = map[string][]string{
	InvoiceStatusUnpaid:  {InvoiceStatusPaid, InvoiceStatusOverdue},
	InvoiceStatusOverdue: {InvoiceStatusPaid},
}

// KnownStatus 状态是否属于给定集合
func KnownStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition 校验状态流转
func CanTransition(table map[string][]string, from, to string) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DocumentSequence 单据流水号（按类型+年月）
type DocumentSequence struct {
	DocType   string    `json:"doc_type" gorm:"primaryKey;size:20"`
	Year      int       `json:"year" gorm:"column:seq_year;primaryKey;autoIncrement:false"`
	Month     int       `json:"month" gorm:"column:seq_month;primaryKey;autoIncrement:false"`
	Value     int       `json:"value" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// 流水号类型，SJ与BAST共用distribution
const (
	SequenceDistribution = "distribution"
	SequenceInvoice      = "invoice"
)
