package services

import (
	"context"
	"fmt"
	"strings"

	"salesbook/internal/core"
	applog "salesbook/internal/log"
	"salesbook/internal/tables"
)

// CustomerStore is the part of the record store customer management needs.
type CustomerStore interface {
	LoadCustomers(ctx context.Context) ([]core.Customer, error)
	tables.CustomerWriter
}

type CustomerService struct {
	store    CustomerStore
	onChange Invalidator
	logger   *applog.Logger
}

func NewCustomerService(store CustomerStore, onChange Invalidator) *CustomerService {
	return &CustomerService{
		store:    store,
		onChange: orNoop(onChange),
		logger:   applog.Default(applog.ComponentCustomer),
	}
}

// normalize trims the name and formats the phone.
func normalizeCustomer(name, rawPhone string) (core.Customer, error) {
	c := core.Customer{
		Name:  strings.TrimSpace(name),
		Phone: core.FormatPhone(rawPhone),
	}
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	return c, nil
}

// Register adds a customer. Both name and phone are required; an 11-digit
// phone is stored as "(DD) DDDDD-DDDD".
func (s *CustomerService) Register(ctx context.Context, name, rawPhone string) (core.Customer, error) {
	c, err := normalizeCustomer(name, rawPhone)
	if err != nil {
		return core.Customer{}, err
	}

	saved, err := s.store.AppendCustomer(ctx, c)
	if err != nil {
		return core.Customer{}, fmt.Errorf("save customer: %w", err)
	}
	s.onChange.Invalidate()

	s.logger.InfoContext(ctx, "Customer registered",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldCustomerID, saved.ID,
		applog.FieldCustomerName, saved.Name)
	return saved, nil
}

func (s *CustomerService) Edit(ctx context.Context, id int64, name, rawPhone string) (core.Customer, error) {
	c, err := normalizeCustomer(name, rawPhone)
	if err != nil {
		return core.Customer{}, err
	}
	c.ID = id

	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return core.Customer{}, fmt.Errorf("update customer %d: %w", id, err)
	}
	s.onChange.Invalidate()

	s.logger.InfoContext(ctx, "Customer updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldCustomerID, id)
	return c, nil
}

// Delete removes a customer. Existing sales keep the dangling id.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	s.onChange.Invalidate()

	s.logger.InfoContext(ctx, "Customer deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldCustomerID, id)
	return nil
}

func (s *CustomerService) List(ctx context.Context) ([]core.Customer, error) {
	cs, err := s.store.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	return cs, nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (core.Customer, error) {
	cs, err := s.List(ctx)
	if err != nil {
		return core.Customer{}, err
	}
	for _, c := range cs {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Customer{}, fmt.Errorf("customer %d: %w", id, tables.ErrNotFound)
}
