package services

import (
	"context"
	"fmt"
	"strings"

	"salesbook/internal/core"
	applog "salesbook/internal/log"
	"salesbook/internal/tables"
)

type ProductStore interface {
	LoadProducts(ctx context.Context) ([]core.Product, error)
	tables.ProductWriter
}

type ProductService struct {
	store    ProductStore
	onChange Invalidator
	logger   *applog.Logger
}

func NewProductService(store ProductStore, onChange Invalidator) *ProductService {
	return &ProductService{
		store:    store,
		onChange: orNoop(onChange),
		logger:   applog.Default(applog.ComponentProduct),
	}
}

func normalizeProduct(name string, price core.Money) (core.Product, error) {
	p := core.Product{Name: strings.TrimSpace(name), Price: price}
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	return p, nil
}

// Register adds a product. A zero price is allowed.
func (s *ProductService) Register(ctx context.Context, name string, price core.Money) (core.Product, error) {
	p, err := normalizeProduct(name, price)
	if err != nil {
		return core.Product{}, err
	}

	saved, err := s.store.AppendProduct(ctx, p)
	if err != nil {
		return core.Product{}, fmt.Errorf("save product: %w", err)
	}
	s.onChange.Invalidate()

	s.logger.InfoContext(ctx, "Product registered",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldProductID, saved.ID,
		applog.FieldProduct, saved.Name,
		applog.FieldPriceCents, saved.Price.Cents)
	return saved, nil
}

// Edit changes name and price. Past sales are valued at the new price.
func (s *ProductService) Edit(ctx context.Context, id int64, name string, price core.Money) (core.Product, error) {
	p, err := normalizeProduct(name, price)
	if err != nil {
		return core.Product{}, err
	}
	p.ID = id

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return core.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	s.onChange.Invalidate()

	s.logger.InfoContext(ctx, "Product updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldProductID, id,
		applog.FieldPriceCents, p.Price.Cents)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.onChange.Invalidate()

	s.logger.InfoContext(ctx, "Product deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldProductID, id)
	return nil
}

func (s *ProductService) List(ctx context.Context) ([]core.Product, error) {
	ps, err := s.store.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return ps, nil
}
