package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/export"
	"github.com/shopspring/decimal"
)

// ReportService 报表服务
type ReportService struct {
	*base
}

func NewReportService(b *base) *ReportService {
	return &ReportService{base: b}
}

// dateRange 解析闭区间 [start, end]，返回 start 当日零点与 end 次日零点
func (s *ReportService) dateRange(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	from, err := s.parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start", ErrInvalidDateRange)
	}
	to, err := s.parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end", ErrInvalidDateRange)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end before start", ErrInvalidDateRange)
	}
	return from, to.AddDate(0, 0, 1), nil
}

func within(t, from, until time.Time) bool {
	return !t.Before(from) && t.Before(until)
}

// Financial 财务报表：收入=区间内已付发票，支出=区间内采购单，应收=区间内未付发票
func (s *ReportService) Financial(ctx context.Context, start, end string) (*export.FinancialReport, error) {
	from, until, err := s.dateRange(start, end)
	if err != nil {
		return nil, err
	}

	invoices, _, err := s.repos.Invoice.FindAll(ctx, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	orders, _, err := s.repos.PO.FindAll(ctx, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	names, err := s.kitchenNames(ctx)
	if err != nil {
		return nil, err
	}

	r := &export.FinancialReport{
		Start:          from,
		End:            until.AddDate(0, 0, -1),
		Revenue:        decimal.Zero,
		Expenses:       decimal.Zero,
		Receivables:    decimal.Zero,
		PaidInvoices:   []export.ReportLine{},
		PurchaseOrders: []export.ReportLine{},
	}
	for _, inv := range invoices {
		if !within(inv.IssueDate.In(s.opts.Location), from, until) {
			continue
		}
		if inv.Status == entity.InvoiceStatusPaid {
			r.Revenue = r.Revenue.Add(inv.Amount)
			r.PaidInvoices = append(r.PaidInvoices, export.ReportLine{
				Number: inv.InvoiceNumber,
				Date:   inv.IssueDate.In(s.opts.Location),
				Party:  orUnknown(names[inv.SPPGID]),
				Amount: inv.Amount,
			})
			continue
		}
		r.Receivables = r.Receivables.Add(inv.Amount)
	}
	for _, po := range orders {
		if !within(po.OrderDate.In(s.opts.Location), from, until) {
			continue
		}
		r.Expenses = r.Expenses.Add(po.TotalPrice)
		r.PurchaseOrders = append(r.PurchaseOrders, export.ReportLine{
			Number: po.PONumber,
			Date:   po.OrderDate.In(s.opts.Location),
			Party:  po.Supplier,
			Amount: po.TotalPrice,
		})
	}
	r.NetProfit = r.Revenue.Sub(r.Expenses)
	return r, nil
}

// Distributions 配送报表：区间内配送单与发票明细
func (s *ReportService) Distributions(ctx context.Context, start, end string) (*export.DistributionReport, error) {
	from, until, err := s.dateRange(start, end)
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
	kitchens, err := s.kitchenNames(ctx)
	if err != nil {
		return nil, err
	}
	coords, err := s.repos.Coordinator.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	coordNames := make(map[string]string, len(coords))
	for _, c := range coords {
		coordNames[c.ID] = c.Name
	}

	r := &export.DistributionReport{
		Start:         from,
		End:           until.AddDate(0, 0, -1),
		GeneratedAt:   s.now(),
		TotalRevenue:  decimal.Zero,
		Distributions: []export.DistributionLine{},
		Invoices:      []export.InvoiceLine{},
	}
	for _, d := range dists {
		date := d.DistributionDate.In(s.opts.Location)
		if !within(date, from, until) {
			continue
		}
		r.TotalDistributions++
		r.TotalCartons += int64(d.Cartons)
		r.Distributions = append(r.Distributions, export.DistributionLine{
			Date:           date,
			ShipmentNumber: d.SuratJalanNumber,
			Kitchen:        kitchens[d.SPPGID],
			Coordinator:    coordNames[d.CoordinatorID],
			Cartons:        d.Cartons,
			Status:         d.Status,
		})
	}
	for _, inv := range invoices {
		date := inv.IssueDate.In(s.opts.Location)
		if !within(date, from, until) {
			continue
		}
		if inv.Status == entity.InvoiceStatusPaid {
			r.TotalRevenue = r.TotalRevenue.Add(inv.Amount)
		}
		r.Invoices = append(r.Invoices, export.InvoiceLine{
			Date:    date,
			Number:  inv.InvoiceNumber,
			Kitchen: kitchens[inv.SPPGID],
			Amount:  inv.Amount,
			Status:  inv.Status,
		})
	}
	return r, nil
}

func (s *ReportService) kitchenNames(ctx context.Context) (map[string]string, error) {
	kitchens, err := s.repos.Kitchen.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(kitchens))
	for _, k := range kitchens {
		names[k.ID] = k.Name
	}
	return names, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
