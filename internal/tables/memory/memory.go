package memory

import (
	"context"
	"fmt"
	"sync"

	"salesbook/internal/core"
	"salesbook/internal/report"
	"salesbook/internal/tables"
)

// Store keeps the tables in process memory. Used by tests and the demo
// backend; nothing survives a restart.
type Store struct {
	mu        sync.Mutex
	policy    core.IDPolicy
	customers []core.Customer
	products  []core.Product
	sales     []core.Sale
	// high-water marks for the monotonic id policy
	customerSeq int64
	productSeq  int64
}

var _ tables.Store = (*Store)(nil)

func New(policy core.IDPolicy) *Store {
	return &Store{policy: policy}
}

// NewSeeded returns a store pre-filled with t. Ids in t are kept as-is.
func NewSeeded(policy core.IDPolicy, t report.Tables) *Store {
	s := New(policy)
	s.customers = append(s.customers, t.Customers...)
	s.products = append(s.products, t.Products...)
	s.sales = append(s.sales, t.Sales...)
	for _, c := range s.customers {
		s.customerSeq = max(s.customerSeq, c.ID)
	}
	for _, p := range s.products {
		s.productSeq = max(s.productSeq, p.ID)
	}
	return s
}

func (s *Store) Close() error { return nil }

func (s *Store) LoadCustomers(_ context.Context) ([]core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Customer(nil), s.customers...), nil
}

func (s *Store) LoadProducts(_ context.Context) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Product(nil), s.products...), nil
}

func (s *Store) LoadSales(_ context.Context) ([]core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Sale(nil), s.sales...), nil
}

func (s *Store) AppendCustomer(_ context.Context, c core.Customer) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.policy.NextID(tables.CustomerIDs(s.customers), s.customerSeq)
	s.customerSeq = max(s.customerSeq, c.ID)
	s.customers = append(s.customers, c)
	return c, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c core.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.customers {
		if s.customers[i].ID == c.ID {
			s.customers[i] = c
			return nil
		}
	}
	return fmt.Errorf("customer %d: %w", c.ID, tables.ErrNotFound)
}

func (s *Store) DeleteCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.customers {
		if s.customers[i].ID == id {
			s.customers = append(s.customers[:i], s.customers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("customer %d: %w", id, tables.ErrNotFound)
}

func (s *Store) AppendProduct(_ context.Context, p core.Product) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.policy.NextID(tables.ProductIDs(s.products), s.productSeq)
	s.productSeq = max(s.productSeq, p.ID)
	s.products = append(s.products, p)
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return nil
		}
	}
	return fmt.Errorf("product %d: %w", p.ID, tables.ErrNotFound)
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("product %d: %w", id, tables.ErrNotFound)
}

func (s *Store) AppendSale(_ context.Context, sale core.Sale) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, sale)
	return sale, nil
}
