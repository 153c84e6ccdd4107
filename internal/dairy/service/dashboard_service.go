package service

import (
	"context"
	"sort"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dashboardCacheKey = "flowmilk:dashboard"
	dashboardCacheTTL = time.Minute
	recentActivities  = 5
)

// CoordinatorStock 协调员库存
type CoordinatorStock struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
	Stock  int    `json:"stock"`
}

// Activity 最近动态
type Activity struct {
	Type   string    `json:"type"` // purchase_order / distribution
	ID     string    `json:"id"`
	Number string    `json:"number"`
	Label  string    `json:"label"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// DashboardSummary 仪表盘
type DashboardSummary struct {
	AvailableStock    int64              `json:"available_stock"`
	TotalPOValue      decimal.Decimal    `json:"total_po_value"`
	UnpaidReceivables decimal.Decimal    `json:"unpaid_receivables"`
	PurchaseOrders    map[string]int     `json:"purchase_orders"`
	Distributions     map[string]int     `json:"distributions"`
	Invoices          map[string]int     `json:"invoices"`
	CoordinatorStock  []CoordinatorStock `json:"coordinator_stock"`
	RecentActivities  []Activity         `json:"recent_activities"`
}

// DashboardService 仪表盘
type DashboardService struct {
	*base
}

func NewDashboardService(b *base) *DashboardService {
	return &DashboardService{base: b}
}

// Summary 汇总统计
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	var cached DashboardSummary
	if ok, err := s.deps.Cache.GetJSON(ctx, dashboardCacheKey, &cached); err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	orders, _, err := s.repos.PO.FindAll(ctx, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	dists, _, err := s.repos.Distribution.FindAll(ctx, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	invoices, _, err := s.repos.Invoice.FindAll(ctx, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	coords, err := s.repos.Coordinator.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	kitchens, err := s.repos.Kitchen.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}

	sum := &DashboardSummary{
		TotalPOValue:      decimal.Zero,
		UnpaidReceivables: decimal.Zero,
		PurchaseOrders:    map[string]int{entity.POStatusDraft: 0, entity.POStatusSent: 0, entity.POStatusReceived: 0},
		Distributions:     map[string]int{entity.DistributionStatusPending: 0, entity.DistributionStatusInTransit: 0, entity.DistributionStatusDelivered: 0},
		Invoices:          map[string]int{entity.InvoiceStatusUnpaid: 0, entity.InvoiceStatusPaid: 0, entity.InvoiceStatusOverdue: 0},
		CoordinatorStock:  make([]CoordinatorStock, 0, len(coords)),
	}

	for _, c := range coords {
		sum.AvailableStock += int64(c.Stock)
		sum.CoordinatorStock = append(sum.CoordinatorStock, CoordinatorStock{
			ID: c.ID, Name: c.Name, Region: c.Region, Stock: c.Stock,
		})
	}
	for _, po := range orders {
		sum.TotalPOValue = sum.TotalPOValue.Add(po.TotalPrice)
		sum.PurchaseOrders[po.Status]++
	}
	for _, d := range dists {
		sum.Distributions[d.Status]++
	}
	for _, inv := range invoices {
		sum.Invoices[inv.Status]++
		if inv.Status != entity.InvoiceStatusPaid {
			sum.UnpaidReceivables = sum.UnpaidReceivables.Add(inv.Amount)
		}
	}

	names := make(map[string]string, len(kitchens))
	for _, k := range kitchens {
		names[k.ID] = k.Name
	}
	sum.RecentActivities = recent(orders, dists, names)

	if err := s.deps.Cache.SetJSON(ctx, dashboardCacheKey, sum, dashboardCacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return sum, nil
}

// recent 合并采购与配送，按业务日期倒序取前几条
func recent(orders []entity.PurchaseOrder, dists []entity.Distribution, kitchens map[string]string) []Activity {
	items := make([]Activity, 0, len(orders)+len(dists))
	for _, po := range orders {
		items = append(items, Activity{
			Type: "purchase_order", ID: po.ID, Number: po.PONumber,
			Label: po.Supplier, Date: po.OrderDate, Status: po.Status,
		})
	}
	for _, d := range dists {
		items = append(items, Activity{
			Type: "distribution", ID: d.ID, Number: d.SuratJalanNumber,
			Label: kitchens[d.SPPGID], Date: d.DistributionDate, Status: d.Status,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	if len(items) > recentActivities {
		items = items[:recentActivities]
	}
	return items
}
