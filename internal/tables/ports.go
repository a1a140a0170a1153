package tables

import (
	"context"
	"errors"
	"fmt"

	"salesbook/internal/core"
	"salesbook/internal/report"
)

// ErrNotFound is returned by update and delete calls for an unknown id.
var ErrNotFound = errors.New("record not found")

// Ports for the record store.
type (
	// Loader reads whole tables. Implementations coerce malformed fields
	// (zero for numbers, zero date for dates) instead of failing.
	Loader interface {
		LoadCustomers(ctx context.Context) ([]core.Customer, error)
		LoadProducts(ctx context.Context) ([]core.Product, error)
		LoadSales(ctx context.Context) ([]core.Sale, error)
	}

	// CustomerWriter mutates the customer table. AppendCustomer ignores the
	// incoming ID and returns the record with its assigned one.
	CustomerWriter interface {
		AppendCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
		UpdateCustomer(ctx context.Context, c core.Customer) error
		DeleteCustomer(ctx context.Context, id int64) error
	}

	ProductWriter interface {
		AppendProduct(ctx context.Context, p core.Product) (core.Product, error)
		UpdateProduct(ctx context.Context, p core.Product) error
		DeleteProduct(ctx context.Context, id int64) error
	}

	// SaleWriter appends sales. Sales have no update or delete.
	SaleWriter interface {
		AppendSale(ctx context.Context, s core.Sale) (core.Sale, error)
	}

	// Store is the full record store used by the application services.
	Store interface {
		Loader
		CustomerWriter
		ProductWriter
		SaleWriter
		Close() error
	}
)

// Snapshot loads the three tables for one report run.
func Snapshot(ctx context.Context, l Loader) (report.Tables, error) {
	var (
		t   report.Tables
		err error
	)
	if t.Customers, err = l.LoadCustomers(ctx); err != nil {
		return report.Tables{}, fmt.Errorf("load customers: %w", err)
	}
	if t.Products, err = l.LoadProducts(ctx); err != nil {
		return report.Tables{}, fmt.Errorf("load products: %w", err)
	}
	if t.Sales, err = l.LoadSales(ctx); err != nil {
		return report.Tables{}, fmt.Errorf("load sales: %w", err)
	}
	return t, nil
}

// CustomerIDs returns the ids of the given customers.
func CustomerIDs(cs []core.Customer) []int64 {
	ids := make([]int64, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

// ProductIDs returns the ids of the given products.
func ProductIDs(ps []core.Product) []int64 {
	ids := make([]int64, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}
