package storage

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Customer struct {
	ID    int64
	Name  string
	Phone string
}

type Product struct {
	ID         int64
	Name       string
	PriceCents int64
}

type Sale struct {
	ID          int64
	CustomerID  int64
	ProductID   int64
	ProductName string
	Quantity    int64
	SaleDate    string
}

const listCustomers = `SELECT id, name, phone FROM customers ORDER BY id`

func (q *Queries) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx, listCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Customer
	for rows.Next() {
		var i Customer
		if err := rows.Scan(&i.ID, &i.Name, &i.Phone); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertCustomer = `INSERT INTO customers (id, name, phone) VALUES (?, ?, ?)`

func (q *Queries) InsertCustomer(ctx context.Context, arg Customer) error {
	_, err := q.db.ExecContext(ctx, insertCustomer, arg.ID, arg.Name, arg.Phone)
	return err
}

const updateCustomer = `UPDATE customers SET name = ?, phone = ? WHERE id = ?`

func (q *Queries) UpdateCustomer(ctx context.Context, arg Customer) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCustomer, arg.Name, arg.Phone, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCustomer = `DELETE FROM customers WHERE id = ?`

func (q *Queries) DeleteCustomer(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCustomer, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listProducts = `SELECT id, name, price_cents FROM products ORDER BY id`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(&i.ID, &i.Name, &i.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertProduct = `INSERT INTO products (id, name, price_cents) VALUES (?, ?, ?)`

func (q *Queries) InsertProduct(ctx context.Context, arg Product) error {
	_, err := q.db.ExecContext(ctx, insertProduct, arg.ID, arg.Name, arg.PriceCents)
	return err
}

const updateProduct = `UPDATE products SET name = ?, price_cents = ? WHERE id = ?`

func (q *Queries) UpdateProduct(ctx context.Context, arg Product) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateProduct, arg.Name, arg.PriceCents, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteProduct = `DELETE FROM products WHERE id = ?`

func (q *Queries) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listSales = `SELECT id, customer_id, product_id, product_name, quantity, sale_date FROM sales ORDER BY id`

func (q *Queries) ListSales(ctx context.Context) ([]Sale, error) {
	rows, err := q.db.QueryContext(ctx, listSales)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Sale
	for rows.Next() {
		var i Sale
		if err := rows.Scan(&i.ID, &i.CustomerID, &i.ProductID, &i.ProductName, &i.Quantity, &i.SaleDate); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertSale = `INSERT INTO sales (customer_id, product_id, product_name, quantity, sale_date)
VALUES (?, ?, ?, ?, ?) RETURNING id`

func (q *Queries) InsertSale(ctx context.Context, arg Sale) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertSale, arg.CustomerID, arg.ProductID, arg.ProductName, arg.Quantity, arg.SaleDate)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getHighWater = `SELECT high_water FROM id_sequences WHERE table_name = ?`

func (q *Queries) GetHighWater(ctx context.Context, table string) (int64, error) {
	var hw int64
	err := q.db.QueryRowContext(ctx, getHighWater, table).Scan(&hw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return hw, err
}

const bumpHighWater = `INSERT INTO id_sequences (table_name, high_water) VALUES (?, ?)
ON CONFLICT (table_name) DO UPDATE SET high_water = MAX(high_water, excluded.high_water)`

func (q *Queries) BumpHighWater(ctx context.Context, table string, id int64) error {
	_, err := q.db.ExecContext(ctx, bumpHighWater, table, id)
	return err
}
