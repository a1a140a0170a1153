package tables

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"salesbook/internal/core"
)

// ErrTargetNotEmpty is returned by Copy when the destination already holds records.
var ErrTargetNotEmpty = errors.New("target store is not empty")

// CopyStats counts the records written by Copy.
type CopyStats struct {
	Customers int
	Products  int
	Sales     int
}

// Copy moves every record from src into the empty store dst. The destination
// assigns its own ids, so sales are rewritten to point at the new customer and
// product ids. A sale whose customer or product no longer exists gets a zero
// reference, so it cannot land on a live record that took over the old id;
// such sales are still valued by product name.
func Copy(ctx context.Context, src Loader, dst Store) (CopyStats, error) {
	var (
		customers []core.Customer
		products  []core.Product
		sales     []core.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = src.LoadCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = src.LoadProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		sales, err = src.LoadSales(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return CopyStats{}, fmt.Errorf("load source: %w", err)
	}

	existing, err := Snapshot(ctx, dst)
	if err != nil {
		return CopyStats{}, fmt.Errorf("load target: %w", err)
	}
	if len(existing.Customers)+len(existing.Products)+len(existing.Sales) > 0 {
		return CopyStats{}, ErrTargetNotEmpty
	}

	var stats CopyStats
	customerIDs := make(map[int64]int64, len(customers))
	for _, c := range customers {
		saved, err := dst.AppendCustomer(ctx, c)
		if err != nil {
			return stats, fmt.Errorf("copy customer %d: %w", c.ID, err)
		}
		customerIDs[c.ID] = saved.ID
		stats.Customers++
	}

	productIDs := make(map[int64]int64, len(products))
	for _, p := range products {
		saved, err := dst.AppendProduct(ctx, p)
		if err != nil {
			return stats, fmt.Errorf("copy product %d: %w", p.ID, err)
		}
		productIDs[p.ID] = saved.ID
		stats.Products++
	}

	for i, s := range sales {
		s.CustomerID = customerIDs[s.CustomerID]
		s.ProductID = productIDs[s.ProductID]
		if _, err := dst.AppendSale(ctx, s); err != nil {
			return stats, fmt.Errorf("copy sale %d: %w", i+1, err)
		}
		stats.Sales++
	}
	return stats, nil
}
