package memory

import (
	"context"
	"errors"
	"testing"

	"salesbook/internal/core"
	"salesbook/internal/report"
	"salesbook/internal/tables"
)

func TestMemoryStoreAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New(core.MaxPlusOne)

	c, err := s.AppendCustomer(ctx, core.Customer{Name: "Ana", Phone: "1"})
	if err != nil || c.ID != 1 {
		t.Fatalf("unexpected append: id=%d err=%v", c.ID, err)
	}
	if _, err := s.AppendSale(ctx, core.Sale{CustomerID: c.ID, ProductName: "Widget", Quantity: 2, Date: core.NewDate(2024, 1, 1)}); err != nil {
		t.Fatalf("append sale: %v", err)
	}

	snap, err := tables.Snapshot(ctx, s)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Customers) != 1 || len(snap.Sales) != 1 || len(snap.Products) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// Loaded slices are copies.
	snap.Customers[0].Name = "changed"
	again, _ := s.LoadCustomers(ctx)
	if again[0].Name != "Ana" {
		t.Fatalf("store leaked its backing slice")
	}
}

func TestMemoryStoreIDPolicies(t *testing.T) {
	ctx := context.Background()
	seed := report.Tables{Products: []core.Product{{ID: 5, Name: "Widget"}}}

	for _, tc := range []struct {
		policy core.IDPolicy
		want   int64
	}{
		{core.MaxPlusOne, 1},
		{core.Monotonic, 6},
	} {
		s := NewSeeded(tc.policy, seed)
		if err := s.DeleteProduct(ctx, 5); err != nil {
			t.Fatalf("%s delete: %v", tc.policy, err)
		}
		p, _ := s.AppendProduct(ctx, core.Product{Name: "Gadget"})
		if p.ID != tc.want {
			t.Fatalf("%s: id=%d, want %d", tc.policy, p.ID, tc.want)
		}
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := New(core.MaxPlusOne)
	if err := s.DeleteProduct(ctx, 1); !errors.Is(err, tables.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateCustomer(ctx, core.Customer{ID: 1}); !errors.Is(err, tables.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
