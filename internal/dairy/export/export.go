// Package export 生成CSV、XLSX与PDF文档
package export

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table 通用表格数据
type Table struct {
	Name    string     // 文件名前缀
	Title   string     // 文档标题
	Headers []string
	Rows    [][]string
}

// Letterhead 单据抬头与落款
type Letterhead struct {
	CompanyName    string
	Address        string
	LegalName      string
	BankName       string
	AccountNumber  string
	Signatory      string
	SignatoryTitle string
	SupplierName   string
}

// DefaultLetterhead KDMP Penfui Timur
func DefaultLetterhead() Letterhead {
	return Letterhead{
		CompanyName:    "KDMP Penfui Timur",
		Address:        "Jln. Matani Raya, Penfui Timur, Kupang, NTT | Telp: 0853-3917-0645",
		LegalName:      "Koperasi Desa Merah Putih Penfui Timur",
		BankName:       "Bank BRI",
		AccountNumber:  "1696-01-0000061-30-9",
		Signatory:      "Susi Wahyuni, M.Si",
		SignatoryTitle: "Manajer Distribusi",
		SupplierName:   "PT MESA MITRA SOLUSINDO",
	}
}

// ReportLine 财务报表明细行
type ReportLine struct {
	Number string          `json:"number"`
	Date   time.Time       `json:"date"`
	Party  string          `json:"party"`
	Amount decimal.Decimal `json:"amount"`
}

// FinancialReport 财务报表
type FinancialReport struct {
	Start          time.Time       `json:"start"`
	End            time.Time       `json:"end"`
	Revenue        decimal.Decimal `json:"revenue"`
	Expenses       decimal.Decimal `json:"expenses"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	Receivables    decimal.Decimal `json:"receivables"`
	PaidInvoices   []ReportLine    `json:"paid_invoices"`
	PurchaseOrders []ReportLine    `json:"purchase_orders"`
}

// DistributionLine 配送报表明细
type DistributionLine struct {
	Date           time.Time `json:"date"`
	ShipmentNumber string    `json:"surat_jalan_number"`
	Kitchen        string    `json:"sppg"`
	Coordinator    string    `json:"coordinator"`
	Cartons        int       `json:"cartons"`
	Status         string    `json:"status"`
}

// InvoiceLine 发票报表明细
type InvoiceLine struct {
	Date    time.Time       `json:"date"`
	Number  string          `json:"invoice_number"`
	Kitchen string          `json:"sppg"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
}

// DistributionReport 配送报表
type DistributionReport struct {
	Start              time.Time          `json:"start"`
	End                time.Time          `json:"end"`
	GeneratedAt        time.Time          `json:"generated_at"`
	TotalDistributions int                `json:"total_distributions"`
	TotalCartons       int64              `json:"total_cartons"`
	TotalRevenue       decimal.Decimal    `json:"total_revenue"`
	Distributions      []DistributionLine `json:"distributions"`
	Invoices           []InvoiceLine      `json:"invoices"`
}

// Party 单据上的一方
type Party struct {
	Name          string
	Address       string
	District      string
	ContactPerson string
	ContactPhone  string
}

// DeliveryDocument 送货单/交接单数据
type DeliveryDocument struct {
	Number      string
	Date        time.Time
	Cartons     int
	Kitchen     Party
	Coordinator Party
}

// InvoiceDocument 发票打印数据
type InvoiceDocument struct {
	Number         string
	IssueDate      time.Time
	DueDate        time.Time
	Status         string
	ShipmentNumber string
	Cartons        int
	UnitPrice      decimal.Decimal
	Amount         decimal.Decimal
	Kitchen        Party
}
