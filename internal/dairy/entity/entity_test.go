package entity

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		table    map[string][]string
		from, to string
		want     bool
	}{
		{ValidPOTransitions, POStatusDraft, POStatusSent, true},
		{ValidPOTransitions, POStatusSent, POStatusReceived, true},
		{ValidPOTransitions, POStatusReceived, POStatusSent, false},
		{ValidDistributionTransitions, DistributionStatusPending, DistributionStatusDelivered, true},
		{ValidDistributionTransitions, DistributionStatusDelivered, DistributionStatusPending, false},
		{ValidDistributionTransitions, DistributionStatusInTransit, DistributionStatusPending, false},
		{ValidInvoiceTransitions, InvoiceStatusUnpaid, InvoiceStatusOverdue, true},
		{ValidInvoiceTransitions, InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{ValidInvoiceTransitions, InvoiceStatusPaid, InvoiceStatusUnpaid, false},
		{ValidInvoiceTransitions, InvoiceStatusUnpaid, InvoiceStatusUnpaid, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.table, tc.from, tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestDistributionInvoiceable(t *testing.T) {
	d := &Distribution{Status: DistributionStatusInTransit}
	if d.Invoiceable() {
		t.Fatal("in-transit distribution must not be invoiceable")
	}
	d.Status = DistributionStatusDelivered
	if !d.Invoiceable() {
		t.Fatal("delivered distribution without invoice should be invoiceable")
	}
	id := "inv-1"
	d.InvoiceID = &id
	if d.Invoiceable() {
		t.Fatal("already invoiced distribution must not be invoiceable")
	}
}

func TestCoordinatorServes(t *testing.T) {
	c := &Coordinator{SPPGIDs: []string{"k1", "k2"}}
	if !c.Serves("k2") || c.Serves("k3") {
		t.Fatalf("unexpected serves result for %v", c.SPPGIDs)
	}
}
