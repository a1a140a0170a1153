package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"salesbook/internal/config"
	"salesbook/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		IDPolicy:     "monotonic",
		AMQPURL:      "amqp://localhost",
	}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != SQLiteBackend || got.IDPolicy != core.Monotonic || got.AMQPURL != cfg.AMQPURL {
		t.Errorf("unexpected config %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"csv ok", Config{Type: CSVBackend, DataDirectory: "data"}, false},
		{"csv missing dir", Config{Type: CSVBackend}, true},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"memory without dir", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend_CSV(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)

	res, err := f.CreateBackend(context.Background(), Config{Type: CSVBackend, DataDirectory: dir, IDPolicy: core.MaxPlusOne})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if res.Publisher != nil {
		t.Error("publisher must be nil without AMQP URL")
	}
	c, err := res.Store.AppendCustomer(context.Background(), core.Customer{Name: "Ana", Phone: "11999990000"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != 1 {
		t.Errorf("first id = %d, want 1", c.ID)
	}
	if _, err := os.Stat(filepath.Join(dir, "customers.csv")); err != nil {
		t.Errorf("customers.csv not written: %v", err)
	}
}

func TestCreateBackend_MemorySeededFromCSV(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	f := NewFactory(nil)

	seed, err := f.CreateBackend(ctx, Config{Type: CSVBackend, DataDirectory: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := seed.Store.AppendProduct(ctx, core.Product{Name: "Widget", Price: core.Money{Cents: 500}}); err != nil {
		t.Fatal(err)
	}
	seed.Cleanup()

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatal(err)
	}
	products, err := res.Store.LoadProducts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Name != "Widget" {
		t.Fatalf("seeded products = %+v", products)
	}

	if _, err := res.Store.AppendProduct(ctx, core.Product{Name: "Gadget", Price: core.Money{Cents: 100}}); err != nil {
		t.Fatal(err)
	}
	reopened, _ := f.CreateBackend(ctx, Config{Type: CSVBackend, DataDirectory: dir})
	onDisk, _ := reopened.Store.LoadProducts(ctx)
	if len(onDisk) != 1 {
		t.Errorf("memory writes leaked to disk: %d products", len(onDisk))
	}
}

func TestCreateBackend_MemoryMissingDir(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(),
		Config{Type: MemoryBackend, DataDirectory: filepath.Join(t.TempDir(), "absent")})
	if err != nil {
		t.Fatal(err)
	}
	customers, _ := res.Store.LoadCustomers(context.Background())
	if len(customers) != 0 {
		t.Errorf("expected empty store, got %d customers", len(customers))
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if _, err := res.Store.AppendCustomer(context.Background(), core.Customer{Name: "Bia", Phone: "1"}); err != nil {
		t.Fatal(err)
	}
}
