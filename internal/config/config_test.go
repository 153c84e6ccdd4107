package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Ledger.MinimumOrderCartons != 2130 {
		t.Fatalf("expected 2130 cartons per batch, got %d", cfg.Ledger.MinimumOrderCartons)
	}
	if cfg.Ledger.PricePerBatch != 191700000 {
		t.Fatalf("expected batch price 191700000, got %d", cfg.Ledger.PricePerBatch)
	}
	if got := cfg.Ledger.SellingPricePerCarton(); got != 100800 {
		t.Fatalf("expected selling price 100800, got %d", got)
	}
	if cfg.Ledger.InvoiceDueDays != 30 {
		t.Fatalf("expected 30 due days, got %d", cfg.Ledger.InvoiceDueDays)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver by default, got %s", cfg.Database.Driver)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis must be disabled without a host")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LEDGER_ORG_CODE", "KDMPX")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ledger.OrgCode != "KDMPX" {
		t.Fatalf("expected org code override, got %s", cfg.Ledger.OrgCode)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestLedgerLocationFallback(t *testing.T) {
	c := LedgerConfig{Timezone: "Nowhere/Invalid"}
	if c.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", c.Location())
	}
}
