package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salesbook/internal/core"
	"salesbook/internal/tables"

	_ "modernc.org/sqlite"
)

const (
	customersTable = "customers"
	productsTable  = "products"
)

// SQLiteRepository is the record store backed by a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	policy  core.IDPolicy
}

var _ tables.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, policy core.IDPolicy) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		policy:  policy,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadCustomers implements tables.Loader
func (r *SQLiteRepository) LoadCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.queries.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]core.Customer, len(rows))
	for i, c := range rows {
		out[i] = core.Customer{ID: c.ID, Name: c.Name, Phone: c.Phone}
	}
	return out, nil
}

// LoadProducts implements tables.Loader
func (r *SQLiteRepository) LoadProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := r.queries.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]core.Product, len(rows))
	for i, p := range rows {
		out[i] = core.Product{ID: p.ID, Name: p.Name, Price: core.Money{Cents: p.PriceCents}}
	}
	return out, nil
}

// LoadSales implements tables.Loader. Unparseable dates load as the zero date.
func (r *SQLiteRepository) LoadSales(ctx context.Context) ([]core.Sale, error) {
	rows, err := r.queries.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	out := make([]core.Sale, len(rows))
	for i, s := range rows {
		date, err := core.ParseDate(s.SaleDate)
		if err != nil {
			slog.WarnContext(ctx, "Sale with unparseable date", "component", "storage", "id", s.ID, "date", s.SaleDate)
			date = core.Date{}
		}
		out[i] = core.Sale{
			CustomerID:  s.CustomerID,
			ProductID:   s.ProductID,
			ProductName: s.ProductName,
			Quantity:    s.Quantity,
			Date:        date,
		}
	}
	return out, nil
}

// AppendCustomer implements tables.CustomerWriter
func (r *SQLiteRepository) AppendCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	err := r.inTx(ctx, func(q *Queries) error {
		rows, err := q.ListCustomers(ctx)
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		ids := make([]int64, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		hw, err := q.GetHighWater(ctx, customersTable)
		if err != nil {
			return fmt.Errorf("get customer sequence: %w", err)
		}
		c.ID = r.policy.NextID(ids, hw)
		if err := q.InsertCustomer(ctx, Customer{ID: c.ID, Name: c.Name, Phone: c.Phone}); err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return q.BumpHighWater(ctx, customersTable, c.ID)
	})
	if err != nil {
		return core.Customer{}, err
	}

	slog.InfoContext(ctx, "Customer saved to SQLite", "component", "storage", "id", c.ID, "name", c.Name)
	return c, nil
}

// UpdateCustomer implements tables.CustomerWriter
func (r *SQLiteRepository) UpdateCustomer(ctx context.Context, c core.Customer) error {
	n, err := r.queries.UpdateCustomer(ctx, Customer{ID: c.ID, Name: c.Name, Phone: c.Phone})
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("customer %d: %w", c.ID, tables.ErrNotFound)
	}
	return nil
}

// DeleteCustomer implements tables.CustomerWriter
func (r *SQLiteRepository) DeleteCustomer(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("customer %d: %w", id, tables.ErrNotFound)
	}
	slog.InfoContext(ctx, "Customer deleted from SQLite", "component", "storage", "id", id)
	return nil
}

// AppendProduct implements tables.ProductWriter
func (r *SQLiteRepository) AppendProduct(ctx context.Context, p core.Product) (core.Product, error) {
	err := r.inTx(ctx, func(q *Queries) error {
		rows, err := q.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		ids := make([]int64, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		hw, err := q.GetHighWater(ctx, productsTable)
		if err != nil {
			return fmt.Errorf("get product sequence: %w", err)
		}
		p.ID = r.policy.NextID(ids, hw)
		if err := q.InsertProduct(ctx, Product{ID: p.ID, Name: p.Name, PriceCents: p.Price.Cents}); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return q.BumpHighWater(ctx, productsTable, p.ID)
	})
	if err != nil {
		return core.Product{}, err
	}

	slog.InfoContext(ctx, "Product saved to SQLite", "component", "storage", "id", p.ID, "name", p.Name, "price_cents", p.Price.Cents)
	return p, nil
}

// UpdateProduct implements tables.ProductWriter
func (r *SQLiteRepository) UpdateProduct(ctx context.Context, p core.Product) error {
	n, err := r.queries.UpdateProduct(ctx, Product{ID: p.ID, Name: p.Name, PriceCents: p.Price.Cents})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", p.ID, tables.ErrNotFound)
	}
	return nil
}

// DeleteProduct implements tables.ProductWriter
func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, tables.ErrNotFound)
	}
	slog.InfoContext(ctx, "Product deleted from SQLite", "component", "storage", "id", id)
	return nil
}

// AppendSale implements tables.SaleWriter
func (r *SQLiteRepository) AppendSale(ctx context.Context, s core.Sale) (core.Sale, error) {
	id, err := r.queries.InsertSale(ctx, Sale{
		CustomerID:  s.CustomerID,
		ProductID:   s.ProductID,
		ProductName: s.ProductName,
		Quantity:    s.Quantity,
		SaleDate:    s.Date.String(),
	})
	if err != nil {
		return core.Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	slog.InfoContext(ctx, "Sale saved to SQLite",
		"component", "storage",
		"id", id,
		"customer_id", s.CustomerID,
		"product", s.ProductName,
		"quantity", s.Quantity,
		"date", s.Date.String())
	return s, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
