package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/testutil"
	"github.com/shopspring/decimal"
)

type memCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	deleted int
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	c.deleted++
	return nil
}

type memStorage struct {
	objects map[string][]byte
}

func (s *memStorage) Put(_ context.Context, objectName, _ string, data []byte) (string, error) {
	s.objects[objectName] = data
	return "https://files.test/" + objectName, nil
}

type recordedEvent struct {
	name    string
	payload interface{}
}

type memEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *memEvents) Publish(event string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{event, payload})
}

func (e *memEvents) PublishToUser(_, event string, payload interface{}) {
	e.Publish(event, payload)
}

func (e *memEvents) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.name)
	}
	return out
}

// seedLedger PO→分配→配送→送达→开票，返回发票
func seedLedger(t *testing.T, env *testEnv) (*entity.PurchaseOrder, *entity.Distribution, *entity.Invoice) {
	t.Helper()
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "Korwil A", 0)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG Oesapa")
	testutil.LinkKitchens(t, env.db, a.ID, k.ID)
	po := env.createPO(t, 1)
	if _, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, []AllocationItem{{CoordinatorID: a.ID, Cartons: 500}}); err != nil {
		t.Fatalf("AllocateStock: %v", err)
	}
	d, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 200})
	if err != nil {
		t.Fatalf("CreateDistribution: %v", err)
	}
	if _, err := env.svc.Distribution.UpdateDistributionStatus(env.ctx, d.ID, entity.DistributionStatusDelivered); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	inv, err := env.svc.Invoice.CreateInvoice(env.ctx, "", &CreateInvoiceRequest{DistributionID: d.ID})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return po, d, inv
}

func TestFinancialReport(t *testing.T) {
	env := setupLedger(t)
	_, _, inv := seedLedger(t, env)

	r, err := env.svc.Report.Financial(env.ctx, "2026-10-01", "2026-10-31")
	if err != nil {
		t.Fatalf("Financial: %v", err)
	}
	if !r.Revenue.IsZero() {
		t.Errorf("expected no revenue before payment, got %s", r.Revenue)
	}
	if !r.Receivables.Equal(decimal.NewFromInt(20160000)) {
		t.Errorf("expected receivables 20160000, got %s", r.Receivables)
	}
	if !r.Expenses.Equal(decimal.NewFromInt(191700000)) {
		t.Errorf("expected expenses 191700000, got %s", r.Expenses)
	}

	if _, err := env.svc.Invoice.UpdateInvoiceStatus(env.ctx, inv.ID, entity.InvoiceStatusPaid); err != nil {
		t.Fatalf("pay: %v", err)
	}
	// 结束日当天的单据计入区间
	r, err = env.svc.Report.Financial(env.ctx, "2026-10-15", "2026-10-15")
	if err != nil {
		t.Fatalf("Financial: %v", err)
	}
	if !r.Revenue.Equal(decimal.NewFromInt(20160000)) || len(r.PaidInvoices) != 1 {
		t.Errorf("expected paid invoice counted, got revenue=%s lines=%d", r.Revenue, len(r.PaidInvoices))
	}
	if !r.NetProfit.Equal(decimal.NewFromInt(20160000 - 191700000)) {
		t.Errorf("unexpected net profit %s", r.NetProfit)
	}
	if r.PaidInvoices[0].Party != "SPPG Oesapa" {
		t.Errorf("expected kitchen name on line, got %q", r.PaidInvoices[0].Party)
	}

	r, err = env.svc.Report.Financial(env.ctx, "2026-11-01", "2026-11-30")
	if err != nil {
		t.Fatalf("Financial: %v", err)
	}
	if !r.Revenue.IsZero() || !r.Expenses.IsZero() {
		t.Errorf("expected empty period, got revenue=%s expenses=%s", r.Revenue, r.Expenses)
	}
}

func TestReportDateRangeValidation(t *testing.T) {
	env := setupLedger(t)
	for _, tc := range []struct{ start, end string }{
		{"", "2026-10-31"},
		{"2026-10-01", ""},
		{"2026-10-31", "2026-10-01"},
		{"01-10-2026", "2026-10-31"},
	} {
		if _, err := env.svc.Report.Financial(env.ctx, tc.start, tc.end); !IsValidation(err) {
			t.Errorf("Financial(%q, %q): expected validation error, got %v", tc.start, tc.end, err)
		}
		if _, err := env.svc.Report.Distributions(env.ctx, tc.start, tc.end); !IsValidation(err) {
			t.Errorf("Distributions(%q, %q): expected validation error, got %v", tc.start, tc.end, err)
		}
	}
}

func TestDistributionReport(t *testing.T) {
	env := setupLedger(t)
	_, d, inv := seedLedger(t, env)
	if _, err := env.svc.Invoice.UpdateInvoiceStatus(env.ctx, inv.ID, entity.InvoiceStatusPaid); err != nil {
		t.Fatalf("pay: %v", err)
	}

	r, err := env.svc.Report.Distributions(env.ctx, "2026-10-01", "2026-10-31")
	if err != nil {
		t.Fatalf("Distributions: %v", err)
	}
	if r.TotalDistributions != 1 || r.TotalCartons != 200 {
		t.Errorf("unexpected totals: %d distributions, %d cartons", r.TotalDistributions, r.TotalCartons)
	}
	if r.Distributions[0].ShipmentNumber != d.SuratJalanNumber {
		t.Errorf("unexpected shipment number %s", r.Distributions[0].ShipmentNumber)
	}
	if !r.TotalRevenue.Equal(decimal.NewFromInt(20160000)) || len(r.Invoices) != 1 {
		t.Errorf("unexpected revenue %s with %d invoices", r.TotalRevenue, len(r.Invoices))
	}
}

func TestDashboardSummaryCachedAndInvalidated(t *testing.T) {
	cache := newMemCache()
	events := &memEvents{}
	env := setupLedgerWith(t, Deps{Cache: cache, Events: events})
	seedLedger(t, env)

	sum, err := env.svc.Dashboard.Summary(env.ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.AvailableStock != 300 {
		t.Errorf("expected available stock 300, got %d", sum.AvailableStock)
	}
	if sum.PurchaseOrders[entity.POStatusSent] != 1 || sum.PurchaseOrders[entity.POStatusDraft] != 0 {
		t.Errorf("unexpected PO counts %v", sum.PurchaseOrders)
	}
	if sum.Distributions[entity.DistributionStatusDelivered] != 1 {
		t.Errorf("unexpected distribution counts %v", sum.Distributions)
	}
	if !sum.UnpaidReceivables.Equal(decimal.NewFromInt(20160000)) {
		t.Errorf("unexpected receivables %s", sum.UnpaidReceivables)
	}
	if len(sum.RecentActivities) != 2 {
		t.Errorf("expected 2 recent activities, got %d", len(sum.RecentActivities))
	}
	if _, ok := cache.items[dashboardCacheKey]; !ok {
		t.Fatal("expected summary cached")
	}

	// 直接改库不会反映到缓存结果
	env.db.Model(&entity.Coordinator{}).Where("id = ?", "coord-a").Update("stock", 999)
	cached, err := env.svc.Dashboard.Summary(env.ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if cached.AvailableStock != 300 {
		t.Errorf("expected cached value 300, got %d", cached.AvailableStock)
	}

	// 任何写操作都会失效缓存
	env.createPO(t, 1)
	if _, ok := cache.items[dashboardCacheKey]; ok {
		t.Error("expected cache invalidated after write")
	}
	fresh, err := env.svc.Dashboard.Summary(env.ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if fresh.AvailableStock != 999 || fresh.PurchaseOrders[entity.POStatusSent] != 2 {
		t.Errorf("expected fresh summary, got stock=%d pos=%v", fresh.AvailableStock, fresh.PurchaseOrders)
	}

	names := strings.Join(events.names(), ",")
	for _, want := range []string{"purchase_order.created", "allocation.created", "distribution.created", "distribution.updated", "invoice.created"} {
		if !strings.Contains(names, want) {
			t.Errorf("expected event %s, got %s", want, names)
		}
	}
}

func TestStateSnapshot(t *testing.T) {
	env := setupLedger(t)
	seedLedger(t, env)

	snap, err := env.svc.State.Snapshot(env.ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.PurchaseOrders) != 1 || len(snap.Coordinators) != 1 || len(snap.SPPGs) != 1 {
		t.Errorf("unexpected snapshot sizes: po=%d coord=%d sppg=%d", len(snap.PurchaseOrders), len(snap.Coordinators), len(snap.SPPGs))
	}
	if len(snap.Distributions) != 1 || len(snap.Invoices) != 1 || len(snap.AllocationHistory) != 1 {
		t.Errorf("unexpected snapshot sizes: dist=%d inv=%d alloc=%d", len(snap.Distributions), len(snap.Invoices), len(snap.AllocationHistory))
	}
	if snap.PurchaseOrders[0].RemainingCartons != 1630 {
		t.Errorf("expected remaining 1630, got %d", snap.PurchaseOrders[0].RemainingCartons)
	}
}

func TestDocumentExports(t *testing.T) {
	store := &memStorage{objects: map[string][]byte{}}
	env := setupLedgerWith(t, Deps{Storage: store})
	seedLedger(t, env)

	for _, dataset := range Datasets() {
		tbl, err := env.svc.Document.Table(env.ctx, dataset)
		if err != nil {
			t.Fatalf("Table(%s): %v", dataset, err)
		}
		if len(tbl.Headers) == 0 || len(tbl.Rows) == 0 {
			t.Errorf("Table(%s): expected headers and rows", dataset)
		}
		for _, row := range tbl.Rows {
			if len(row) != len(tbl.Headers) {
				t.Errorf("Table(%s): row width %d != header width %d", dataset, len(row), len(tbl.Headers))
			}
		}
	}

	orders, err := env.svc.Document.Table(env.ctx, "purchase-orders")
	if err != nil {
		t.Fatalf("Table(purchase-orders): %v", err)
	}
	if row := orders.Rows[0]; row[5] != "500" || row[6] != "1630" {
		t.Errorf("expected allocated 500 and remaining 1630, got %v", row)
	}

	doc, err := env.svc.Document.Export(env.ctx, "distributions", "", false)
	if err != nil {
		t.Fatalf("Export csv: %v", err)
	}
	if doc.ContentType != contentTypes[FormatCSV] || !strings.HasSuffix(doc.FileName, ".csv") {
		t.Errorf("unexpected csv document %s (%s)", doc.FileName, doc.ContentType)
	}
	if !bytes.Contains(doc.Data, []byte("KDMP/SJ/2026/10/001")) {
		t.Error("expected shipment number in csv")
	}

	doc, err = env.svc.Document.Export(env.ctx, "invoices", FormatXLSX, true)
	if err != nil {
		t.Fatalf("Export xlsx: %v", err)
	}
	if !bytes.HasPrefix(doc.Data, []byte("PK")) {
		t.Error("expected zip container for xlsx")
	}
	if !strings.HasPrefix(doc.URL, "https://files.test/exports/2026/10/") {
		t.Errorf("unexpected archive url %s", doc.URL)
	}
	if len(store.objects) != 1 {
		t.Errorf("expected 1 archived object, got %d", len(store.objects))
	}

	if _, err := env.svc.Document.Export(env.ctx, "users", FormatCSV, false); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
	if _, err := env.svc.Document.Export(env.ctx, "invoices", "docx", false); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := env.svc.Document.FinancialReport(env.ctx, "2026-10-01", "2026-10-31", FormatXLSX, false); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat for xlsx financial report, got %v", err)
	}
}

func TestArchiveWithoutStorage(t *testing.T) {
	env := setupLedger(t)
	seedLedger(t, env)

	if _, err := env.svc.Document.Export(env.ctx, "purchase-orders", FormatCSV, true); !errors.Is(err, ErrArchiveUnavailable) {
		t.Fatalf("expected ErrArchiveUnavailable, got %v", err)
	}
	if !IsConflict(ErrArchiveUnavailable) {
		t.Error("archive unavailable should map to conflict")
	}
}

func TestPrintableDocuments(t *testing.T) {
	env := setupLedger(t)
	_, d, inv := seedLedger(t, env)

	for name, render := range map[string]func() (*Document, error){
		"shipment": func() (*Document, error) { return env.svc.Document.ShipmentNote(env.ctx, d.ID) },
		"handover": func() (*Document, error) { return env.svc.Document.HandoverNote(env.ctx, d.ID) },
		"invoice":  func() (*Document, error) { return env.svc.Document.InvoicePrint(env.ctx, inv.ID) },
		"financial": func() (*Document, error) {
			return env.svc.Document.FinancialReport(env.ctx, "2026-10-01", "2026-10-31", "", false)
		},
	} {
		doc, err := render()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
			t.Errorf("%s: expected PDF output", name)
		}
		if doc.ContentType != contentTypes[FormatPDF] {
			t.Errorf("%s: unexpected content type %s", name, doc.ContentType)
		}
	}

	doc, err := env.svc.Document.DistributionReport(env.ctx, "2026-10-01", "2026-10-31", false)
	if err != nil {
		t.Fatalf("DistributionReport: %v", err)
	}
	if doc.FileName != "laporan-flowmilk-2026-10-01-2026-10-31.csv" {
		t.Errorf("unexpected file name %s", doc.FileName)
	}

	if _, err := env.svc.Document.ShipmentNote(env.ctx, "missing"); err == nil {
		t.Error("expected error for unknown distribution")
	}
}
