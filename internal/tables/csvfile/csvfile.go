// Package csvfile is the flat-file record store: one CSV file per table,
// header row plus one row per record. Reads coerce malformed fields instead of
// failing and every mutation rewrites the affected file in full.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"salesbook/internal/core"
	"salesbook/internal/tables"
)

const (
	CustomersFile = "customers.csv"
	ProductsFile  = "products.csv"
	SalesFile     = "sales.csv"
)

var (
	customerHeader = []string{"id", "name", "phone"}
	productHeader  = []string{"id", "name", "price"}
	saleHeader     = []string{"customer_id", "product_id", "product_name", "quantity", "date"}
)

// Column aliases accepted on read. Besides the current names they cover the
// legacy 4-column sales header (customer_id,product,quantity,date) and the
// Portuguese spreadsheets this tool replaced (clientes.csv, produtos.csv,
// vendas.csv), so those files can be dropped in as-is.
var aliases = map[string][]string{
	"id":           {"id"},
	"name":         {"name", "nome"},
	"phone":        {"phone", "telefone"},
	"price":        {"price", "preco"},
	"customer_id":  {"customer_id", "cliente_id"},
	"product_id":   {"product_id"},
	"product_name": {"product_name", "product", "produto"},
	"quantity":     {"quantity", "quantidade"},
	"date":         {"date", "data"},
}

// Store keeps the three tables under one directory.
type Store struct {
	mu     sync.Mutex
	dir    string
	policy core.IDPolicy
}

var _ tables.Store = (*Store)(nil)

// Open prepares dir, creating any missing or zero-size table file with just
// its header row.
func Open(dir string, policy core.IDPolicy) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{dir: dir, policy: policy}
	for name, header := range map[string][]string{
		CustomersFile: customerHeader,
		ProductsFile:  productHeader,
		SalesFile:     saleHeader,
	} {
		path := s.path(name)
		info, err := os.Stat(path)
		if err == nil && info.Size() > 0 {
			continue
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		if err := writeFile(path, header, nil); err != nil {
			return nil, fmt.Errorf("initialise %s: %w", name, err)
		}
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Close is a no-op; files are not held open between calls.
func (s *Store) Close() error { return nil }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

func (s *Store) LoadCustomers(_ context.Context) ([]core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCustomers()
}

func (s *Store) LoadProducts(_ context.Context) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProducts()
}

func (s *Store) LoadSales(_ context.Context) ([]core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSales()
}

func (s *Store) AppendCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadCustomers()
	if err != nil {
		return core.Customer{}, err
	}
	c.ID, err = s.nextID(CustomersFile, tables.CustomerIDs(rows))
	if err != nil {
		return core.Customer{}, err
	}
	rows = append(rows, c)
	if err := s.saveCustomers(rows); err != nil {
		return core.Customer{}, err
	}
	if err := s.bumpSequence(CustomersFile, c.ID); err != nil {
		return core.Customer{}, err
	}

	slog.InfoContext(ctx, "Customer saved to CSV", "component", "storage", "id", c.ID, "name", c.Name)
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c core.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadCustomers()
	if err != nil {
		return err
	}
	found := false
	for i := range rows {
		if rows[i].ID == c.ID {
			rows[i].Name, rows[i].Phone = c.Name, c.Phone
			found = true
		}
	}
	if !found {
		return fmt.Errorf("customer %d: %w", c.ID, tables.ErrNotFound)
	}
	if err := s.saveCustomers(rows); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Customer updated in CSV", "component", "storage", "id", c.ID)
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadCustomers()
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, c := range rows {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(rows) {
		return fmt.Errorf("customer %d: %w", id, tables.ErrNotFound)
	}
	if err := s.saveCustomers(kept); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Customer deleted from CSV", "component", "storage", "id", id)
	return nil
}

func (s *Store) AppendProduct(ctx context.Context, p core.Product) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadProducts()
	if err != nil {
		return core.Product{}, err
	}
	p.ID, err = s.nextID(ProductsFile, tables.ProductIDs(rows))
	if err != nil {
		return core.Product{}, err
	}
	rows = append(rows, p)
	if err := s.saveProducts(rows); err != nil {
		return core.Product{}, err
	}
	if err := s.bumpSequence(ProductsFile, p.ID); err != nil {
		return core.Product{}, err
	}

	slog.InfoContext(ctx, "Product saved to CSV", "component", "storage", "id", p.ID, "name", p.Name, "price_cents", p.Price.Cents)
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadProducts()
	if err != nil {
		return err
	}
	found := false
	for i := range rows {
		if rows[i].ID == p.ID {
			rows[i].Name, rows[i].Price = p.Name, p.Price
			found = true
		}
	}
	if !found {
		return fmt.Errorf("product %d: %w", p.ID, tables.ErrNotFound)
	}
	if err := s.saveProducts(rows); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Product updated in CSV", "component", "storage", "id", p.ID)
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadProducts()
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, p := range rows {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(rows) {
		return fmt.Errorf("product %d: %w", id, tables.ErrNotFound)
	}
	if err := s.saveProducts(kept); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Product deleted from CSV", "component", "storage", "id", id)
	return nil
}

func (s *Store) AppendSale(ctx context.Context, sale core.Sale) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadSales()
	if err != nil {
		return core.Sale{}, err
	}
	rows = append(rows, sale)
	if err := s.saveSales(rows); err != nil {
		return core.Sale{}, err
	}

	slog.InfoContext(ctx, "Sale saved to CSV", "component", "storage",
		"customer_id", sale.CustomerID,
		"product", sale.ProductName,
		"quantity", sale.Quantity,
		"date", sale.Date.String())
	return sale, nil
}

func (s *Store) loadCustomers() ([]core.Customer, error) {
	t, err := readFile(s.path(CustomersFile))
	if err != nil {
		return nil, fmt.Errorf("read customers: %w", err)
	}
	out := make([]core.Customer, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, core.Customer{
			ID:    parseInt(t.get(r, "id")),
			Name:  t.get(r, "name"),
			Phone: t.get(r, "phone"),
		})
	}
	return out, nil
}

func (s *Store) loadProducts() ([]core.Product, error) {
	t, err := readFile(s.path(ProductsFile))
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	out := make([]core.Product, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, core.Product{
			ID:    parseInt(t.get(r, "id")),
			Name:  t.get(r, "name"),
			Price: core.Money{Cents: parsePrice(t.get(r, "price"))},
		})
	}
	return out, nil
}

func (s *Store) loadSales() ([]core.Sale, error) {
	t, err := readFile(s.path(SalesFile))
	if err != nil {
		return nil, fmt.Errorf("read sales: %w", err)
	}
	out := make([]core.Sale, 0, len(t.rows))
	for _, r := range t.rows {
		date, err := core.ParseDate(t.get(r, "date"))
		if err != nil {
			date = core.Date{}
		}
		out = append(out, core.Sale{
			CustomerID:  parseInt(t.get(r, "customer_id")),
			ProductID:   parseInt(t.get(r, "product_id")),
			ProductName: t.get(r, "product_name"),
			Quantity:    parseInt(t.get(r, "quantity")),
			Date:        date,
		})
	}
	return out, nil
}

func (s *Store) saveCustomers(rows []core.Customer) error {
	records := make([][]string, len(rows))
	for i, c := range rows {
		records[i] = []string{strconv.FormatInt(c.ID, 10), c.Name, c.Phone}
	}
	if err := writeTable(s.path(CustomersFile), customerHeader, records); err != nil {
		return fmt.Errorf("write customers: %w", err)
	}
	return nil
}

func (s *Store) saveProducts(rows []core.Product) error {
	records := make([][]string, len(rows))
	for i, p := range rows {
		records[i] = []string{strconv.FormatInt(p.ID, 10), p.Name, p.Price.Decimal()}
	}
	if err := writeTable(s.path(ProductsFile), productHeader, records); err != nil {
		return fmt.Errorf("write products: %w", err)
	}
	return nil
}

func (s *Store) saveSales(rows []core.Sale) error {
	records := make([][]string, len(rows))
	for i, sale := range rows {
		records[i] = []string{
			strconv.FormatInt(sale.CustomerID, 10),
			strconv.FormatInt(sale.ProductID, 10),
			sale.ProductName,
			strconv.FormatInt(sale.Quantity, 10),
			sale.Date.String(),
		}
	}
	if err := writeTable(s.path(SalesFile), saleHeader, records); err != nil {
		return fmt.Errorf("write sales: %w", err)
	}
	return nil
}

// table is a parsed CSV file with its header resolved to column indexes.
type table struct {
	cols map[string]int
	rows [][]string
}

// get returns the trimmed value of a logical column, or "" when the column
// is absent from the file or the row is short.
func (t table) get(row []string, col string) string {
	for _, name := range aliases[col] {
		if i, ok := t.cols[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

func readFile(path string) (table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return table{}, nil
		}
		return table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return table{}, nil
	}
	if err != nil {
		return table{}, fmt.Errorf("read header: %w", err)
	}
	t := table{cols: make(map[string]int, len(header))}
	for i, h := range header {
		t.cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table{}, fmt.Errorf("read row: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// writeTable is the file writer used by the save helpers.
var writeTable = writeFile

// writeFile replaces path atomically with header + records.
func writeFile(path string, header []string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// parseInt coerces a numeric cell to int64. Float spellings ("3.0") are
// truncated; anything else is zero.
func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parsePrice(s string) int64 {
	cents, err := core.ParsePriceToCents(s)
	if err != nil {
		return 0
	}
	return cents
}
