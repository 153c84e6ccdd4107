package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/testutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testEnv struct {
	db    *gorm.DB
	svc   *Services
	clock *testClock
	ctx   context.Context
}

func setupLedger(t *testing.T) *testEnv {
	return setupLedgerWith(t, Deps{})
}

func setupLedgerWith(t *testing.T, deps Deps) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := &testClock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	opts := DefaultOptions()
	opts.Now = clock.Now
	return &testEnv{
		db:    db,
		svc:   NewServices(repository.NewRepositories(db), opts, deps, nil),
		clock: clock,
		ctx:   context.Background(),
	}
}

func (e *testEnv) coordinator(t *testing.T, id string) *entity.Coordinator {
	t.Helper()
	var c entity.Coordinator
	testutil.Reload(t, e.db, &c, id)
	return &c
}

func (e *testEnv) po(t *testing.T, id string) *entity.PurchaseOrder {
	t.Helper()
	var po entity.PurchaseOrder
	testutil.Reload(t, e.db, &po, id)
	return &po
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func (e *testEnv) createPO(t *testing.T, batches int) *entity.PurchaseOrder {
	t.Helper()
	po, err := e.svc.Procurement.CreatePurchaseOrder(e.ctx, testutil.TestUserID, &CreatePORequest{Batches: batches})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	return po
}

func TestRoundTripScenario(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "Korwil A", 0)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG Oesapa")
	testutil.LinkKitchens(t, env.db, a.ID, k.ID)

	po := env.createPO(t, 1)
	if po.TotalCartons != 2130 || po.RemainingCartons != 2130 {
		t.Fatalf("expected 2130 cartons, got total=%d remaining=%d", po.TotalCartons, po.RemainingCartons)
	}
	if po.Status != entity.POStatusSent {
		t.Errorf("expected default status sent, got %s", po.Status)
	}
	if !po.TotalPrice.Equal(decimal.NewFromInt(191700000)) {
		t.Errorf("expected total price 191700000, got %s", po.TotalPrice)
	}
	if !regexp.MustCompile(`^PO-KDMP-\d+$`).MatchString(po.PONumber) {
		t.Errorf("unexpected PO number %s", po.PONumber)
	}

	res, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, []AllocationItem{{CoordinatorID: a.ID, Cartons: 500}})
	if err != nil {
		t.Fatalf("AllocateStock: %v", err)
	}
	if len(res.Applied) != 1 || len(res.Skipped) != 0 {
		t.Fatalf("expected 1 applied, got %d applied %d skipped", len(res.Applied), len(res.Skipped))
	}
	if got := env.po(t, po.ID).RemainingCartons; got != 1630 {
		t.Errorf("expected remaining 1630, got %d", got)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 500 {
		t.Errorf("expected stock 500, got %d", got)
	}

	dist, err := env.svc.Distribution.CreateDistribution(env.ctx, testutil.TestUserID, &CreateDistributionRequest{
		CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 200,
	})
	if err != nil {
		t.Fatalf("CreateDistribution: %v", err)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 300 {
		t.Errorf("expected stock 300, got %d", got)
	}
	if dist.Status != entity.DistributionStatusPending {
		t.Errorf("expected pending, got %s", dist.Status)
	}
	if dist.SuratJalanNumber != "KDMP/SJ/2026/10/001" {
		t.Errorf("unexpected SJ number %s", dist.SuratJalanNumber)
	}
	if dist.BASTNumber != "KDMP/BAST/2026/10/001" {
		t.Errorf("unexpected BAST number %s", dist.BASTNumber)
	}

	if _, err := env.svc.Distribution.UpdateDistributionStatus(env.ctx, dist.ID, entity.DistributionStatusDelivered); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	inv, err := env.svc.Invoice.CreateInvoice(env.ctx, testutil.TestUserID, &CreateInvoiceRequest{DistributionID: dist.ID})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if !inv.Amount.Equal(decimal.NewFromInt(200 * 100800)) {
		t.Errorf("expected amount %d, got %s", 200*100800, inv.Amount)
	}
	if inv.Status != entity.InvoiceStatusUnpaid {
		t.Errorf("expected unpaid, got %s", inv.Status)
	}
	if !inv.DueDate.Equal(inv.IssueDate.AddDate(0, 0, 30)) {
		t.Errorf("expected due = issue + 30d, got issue=%v due=%v", inv.IssueDate, inv.DueDate)
	}
	if inv.InvoiceNumber != "KDMP/INV/2026/10/001" {
		t.Errorf("unexpected invoice number %s", inv.InvoiceNumber)
	}

	var linked entity.Distribution
	testutil.Reload(t, env.db, &linked, dist.ID)
	if linked.InvoiceID == nil || *linked.InvoiceID != inv.ID {
		t.Error("expected distribution linked to invoice")
	}

	// 删除PO回退完整的原始分配量，库存不低于0
	if err := env.svc.Procurement.DeletePurchaseOrder(env.ctx, po.ID); err != nil {
		t.Fatalf("DeletePurchaseOrder: %v", err)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 0 {
		t.Errorf("expected stock floored at 0, got %d", got)
	}
	if n := env.count(t, &entity.AllocationHistory{}); n != 0 {
		t.Errorf("expected allocation history removed, got %d", n)
	}
}

func TestAllocateRejectsOverRemaining(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 10)
	b := testutil.SeedCoordinator(t, env.db, "coord-b", "B", 0)
	po := env.createPO(t, 1)

	_, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, []AllocationItem{
		{CoordinatorID: a.ID, Cartons: 2000},
		{CoordinatorID: b.ID, Cartons: 131},
	})
	if !errors.Is(err, ErrInsufficientRemaining) {
		t.Fatalf("expected ErrInsufficientRemaining, got %v", err)
	}
	if got := env.po(t, po.ID).RemainingCartons; got != 2130 {
		t.Errorf("expected remaining unchanged, got %d", got)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 10 {
		t.Errorf("expected stock unchanged, got %d", got)
	}
	if n := env.count(t, &entity.AllocationHistory{}); n != 0 {
		t.Errorf("expected no history, got %d", n)
	}
}

func TestAllocateValidation(t *testing.T) {
	env := setupLedger(t)
	po := env.createPO(t, 1)

	if _, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, nil); !errors.Is(err, ErrEmptyAllocation) {
		t.Errorf("expected ErrEmptyAllocation, got %v", err)
	}
	if _, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, []AllocationItem{{CoordinatorID: "x", Cartons: 0}}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := env.svc.Procurement.AllocateStock(env.ctx, "missing", []AllocationItem{{CoordinatorID: "x", Cartons: 1}}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAllocateSkipsUnknownCoordinator(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 0)
	po := env.createPO(t, 1)

	res, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, []AllocationItem{
		{CoordinatorID: a.ID, Cartons: 100},
		{CoordinatorID: "ghost", Cartons: 50},
	})
	if err != nil {
		t.Fatalf("AllocateStock: %v", err)
	}
	if len(res.Applied) != 1 || len(res.Skipped) != 1 || res.Skipped[0].CoordinatorID != "ghost" {
		t.Fatalf("unexpected result: applied=%d skipped=%v", len(res.Applied), res.Skipped)
	}
	// PO按请求总量扣减，包括被跳过的一项
	if got := env.po(t, po.ID).RemainingCartons; got != 1980 {
		t.Errorf("expected remaining reduced by the requested sum, got %d", got)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 100 {
		t.Errorf("expected coordinator stock 100, got %d", got)
	}
	if n := env.count(t, &entity.AllocationHistory{}); n != 1 {
		t.Errorf("expected one history row, got %d", n)
	}
}

func TestConcurrentAllocationsNeverOverdraw(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 0)
	po := env.createPO(t, 1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, []AllocationItem{{CoordinatorID: a.ID, Cartons: 300}})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientRemaining) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 7 {
		t.Errorf("expected 7 successful allocations, got %d", succeeded)
	}
	if got := env.po(t, po.ID).RemainingCartons; got != 30 {
		t.Errorf("expected remaining 30, got %d", got)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 2100 {
		t.Errorf("expected stock 2100, got %d", got)
	}
}

func TestCreateDistributionRules(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 50)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG K")
	testutil.LinkKitchens(t, env.db, a.ID, k.ID)

	_, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 51})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 50 {
		t.Errorf("expected stock unchanged, got %d", got)
	}
	if n := env.count(t, &entity.Distribution{}); n != 0 {
		t.Errorf("expected no distribution, got %d", n)
	}

	_, err = env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: "nope", Cartons: 1})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown sppg, got %v", err)
	}
	_, err = env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 0})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}

	// 只能配送到协调员负责的厨房
	other := testutil.SeedKitchen(t, env.db, "sppg-other", "SPPG Lain")
	_, err = env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: other.ID, Cartons: 10})
	if !errors.Is(err, ErrKitchenNotServed) {
		t.Errorf("expected ErrKitchenNotServed, got %v", err)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 50 {
		t.Errorf("expected stock unchanged after rejected kitchen, got %d", got)
	}

	// 失败的请求不消耗流水号
	d, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 50})
	if err != nil {
		t.Fatalf("CreateDistribution: %v", err)
	}
	if d.SuratJalanNumber != "KDMP/SJ/2026/10/001" {
		t.Errorf("expected first sequence, got %s", d.SuratJalanNumber)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 0 {
		t.Errorf("expected stock 0, got %d", got)
	}
}

func TestSequencesPerMonth(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 100)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG K")
	testutil.LinkKitchens(t, env.db, a.ID, k.ID)
	create := func() *entity.Distribution {
		d, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 1})
		if err != nil {
			t.Fatalf("CreateDistribution: %v", err)
		}
		return d
	}

	if got := create().SuratJalanNumber; got != "KDMP/SJ/2026/10/001" {
		t.Errorf("got %s", got)
	}
	if got := create().BASTNumber; got != "KDMP/BAST/2026/10/002" {
		t.Errorf("got %s", got)
	}
	env.clock.Set(time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC))
	if got := create().SuratJalanNumber; got != "KDMP/SJ/2026/11/001" {
		t.Errorf("expected restart in new month, got %s", got)
	}
}

func TestDeletePOReversesEveryAllocation(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 0)
	b := testutil.SeedCoordinator(t, env.db, "coord-b", "B", 0)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG K")
	testutil.LinkKitchens(t, env.db, b.ID, k.ID)
	po := env.createPO(t, 2)
	other := env.createPO(t, 1)

	for _, items := range [][]AllocationItem{
		{{CoordinatorID: a.ID, Cartons: 100}, {CoordinatorID: b.ID, Cartons: 40}},
		{{CoordinatorID: a.ID, Cartons: 60}},
	} {
		if _, err := env.svc.Procurement.AllocateStock(env.ctx, po.ID, items); err != nil {
			t.Fatalf("AllocateStock: %v", err)
		}
	}
	if _, err := env.svc.Procurement.AllocateStock(env.ctx, other.ID, []AllocationItem{{CoordinatorID: b.ID, Cartons: 5}}); err != nil {
		t.Fatalf("AllocateStock other: %v", err)
	}
	// B已经配送出去大部分库存
	if _, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: b.ID, SPPGID: k.ID, Cartons: 30}); err != nil {
		t.Fatalf("CreateDistribution: %v", err)
	}

	if err := env.svc.Procurement.DeletePurchaseOrder(env.ctx, po.ID); err != nil {
		t.Fatalf("DeletePurchaseOrder: %v", err)
	}
	if got := env.coordinator(t, a.ID).Stock; got != 0 {
		t.Errorf("A: expected 0, got %d", got)
	}
	if got := env.coordinator(t, b.ID).Stock; got != 0 {
		t.Errorf("B: expected floored 0, got %d", got)
	}
	var remaining []entity.AllocationHistory
	env.db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].POID != other.ID {
		t.Errorf("expected only the other PO's history to remain, got %+v", remaining)
	}
	if err := env.svc.Procurement.DeletePurchaseOrder(env.ctx, po.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 10)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG K")
	testutil.LinkKitchens(t, env.db, a.ID, k.ID)
	po := env.createPO(t, 1)

	if _, err := env.svc.Procurement.UpdatePurchaseOrderStatus(env.ctx, po.ID, entity.POStatusReceived); err != nil {
		t.Fatalf("sent -> received: %v", err)
	}
	_, err := env.svc.Procurement.UpdatePurchaseOrderStatus(env.ctx, po.ID, entity.POStatusSent)
	var terr *TransitionError
	if !errors.As(err, &terr) || !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if terr.From != entity.POStatusReceived || terr.To != entity.POStatusSent {
		t.Errorf("unexpected transition error %+v", terr)
	}

	d, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 5})
	if err != nil {
		t.Fatalf("CreateDistribution: %v", err)
	}
	// 未知状态属于参数错误，不是流转冲突
	if _, err := env.svc.Distribution.UpdateDistributionStatus(env.ctx, d.ID, "lost"); !errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidStatus for unknown status, got %v", err)
	}
	if _, err := env.svc.Procurement.UpdatePurchaseOrderStatus(env.ctx, po.ID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for unknown PO status, got %v", err)
	}
	if _, err := env.svc.Invoice.UpdateInvoiceStatus(env.ctx, "missing", "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for unknown invoice status, got %v", err)
	}
	if _, err := env.svc.Distribution.UpdateDistributionStatus(env.ctx, d.ID, entity.DistributionStatusInTransit); err != nil {
		t.Fatalf("pending -> in_transit: %v", err)
	}
	if _, err := env.svc.Distribution.UpdateDistributionStatus(env.ctx, d.ID, entity.DistributionStatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected invalid transition back to pending, got %v", err)
	}
}

func TestCreateInvoiceRules(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 10)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG K")
	testutil.LinkKitchens(t, env.db, a.ID, k.ID)
	d, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 3})
	if err != nil {
		t.Fatalf("CreateDistribution: %v", err)
	}

	if _, err := env.svc.Invoice.CreateInvoice(env.ctx, "", &CreateInvoiceRequest{DistributionID: d.ID}); !errors.Is(err, ErrInvoiceNotAllowed) {
		t.Fatalf("expected ErrInvoiceNotAllowed for pending distribution, got %v", err)
	}
	if _, err := env.svc.Distribution.UpdateDistributionStatus(env.ctx, d.ID, entity.DistributionStatusDelivered); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if _, err := env.svc.Invoice.CreateInvoice(env.ctx, "", &CreateInvoiceRequest{DistributionID: d.ID}); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if _, err := env.svc.Invoice.CreateInvoice(env.ctx, "", &CreateInvoiceRequest{DistributionID: d.ID}); !errors.Is(err, ErrAlreadyInvoiced) {
		t.Errorf("expected ErrAlreadyInvoiced, got %v", err)
	}
	if n := env.count(t, &entity.Invoice{}); n != 1 {
		t.Errorf("expected 1 invoice, got %d", n)
	}
	invoiceable, err := env.svc.Distribution.ListInvoiceable(env.ctx)
	if err != nil {
		t.Fatalf("ListInvoiceable: %v", err)
	}
	if len(invoiceable) != 0 {
		t.Errorf("expected no invoiceable distributions, got %d", len(invoiceable))
	}
}

func TestMarkOverdueAndPay(t *testing.T) {
	env := setupLedger(t)
	a := testutil.SeedCoordinator(t, env.db, "coord-a", "A", 10)
	k := testutil.SeedKitchen(t, env.db, "sppg-k", "SPPG K")
	testutil.LinkKitchens(t, env.db, a.ID, k.ID)

	var invoices []*entity.Invoice
	for i := 0; i < 2; i++ {
		d, err := env.svc.Distribution.CreateDistribution(env.ctx, "", &CreateDistributionRequest{CoordinatorID: a.ID, SPPGID: k.ID, Cartons: 1})
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
		invoices = append(invoices, inv)
	}
	paid, err := env.svc.Invoice.UpdateInvoiceStatus(env.ctx, invoices[1].ID, entity.InvoiceStatusPaid)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.PaidAt == nil {
		t.Error("expected paid_at to be set")
	}

	// 到期当天不算逾期
	n, err := env.svc.Invoice.MarkOverdue(env.ctx, time.Date(2026, 11, 14, 12, 0, 0, 0, time.UTC))
	if err != nil || n != 0 {
		t.Fatalf("expected 0 marked on due date, got %d (%v)", n, err)
	}
	n, err = env.svc.Invoice.MarkOverdue(env.ctx, time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC))
	if err != nil || n != 1 {
		t.Fatalf("expected 1 marked, got %d (%v)", n, err)
	}

	var first, second entity.Invoice
	testutil.Reload(t, env.db, &first, invoices[0].ID)
	testutil.Reload(t, env.db, &second, invoices[1].ID)
	if first.Status != entity.InvoiceStatusOverdue {
		t.Errorf("expected overdue, got %s", first.Status)
	}
	if second.Status != entity.InvoiceStatusPaid {
		t.Errorf("paid invoice must stay paid, got %s", second.Status)
	}
	if _, err := env.svc.Invoice.UpdateInvoiceStatus(env.ctx, first.ID, entity.InvoiceStatusPaid); err != nil {
		t.Errorf("overdue -> paid: %v", err)
	}
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	env := setupLedger(t)
	if _, err := env.svc.Procurement.CreatePurchaseOrder(env.ctx, "", &CreatePORequest{Batches: 0}); !errors.Is(err, ErrInvalidBatches) {
		t.Errorf("expected ErrInvalidBatches, got %v", err)
	}
	if _, err := env.svc.Procurement.CreatePurchaseOrder(env.ctx, "", &CreatePORequest{Batches: 1, Status: "cancelled"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := env.svc.Procurement.CreatePurchaseOrder(env.ctx, "", &CreatePORequest{Batches: 1, OrderDate: "15/10/2026"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for bad date, got %v", err)
	}

	// 同一毫秒内创建的PO编号也不重复
	first := env.createPO(t, 1)
	second := env.createPO(t, 3)
	if first.PONumber == second.PONumber {
		t.Errorf("expected unique PO numbers, both %s", first.PONumber)
	}
	if second.TotalCartons != 3*2130 || second.RemainingCartons != second.TotalCartons {
		t.Errorf("unexpected cartons for 3 batches: %d", second.TotalCartons)
	}
}
