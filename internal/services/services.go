// Package services holds the application operations behind the web pages and
// the CLI: registering customers and products, recording sales and building
// cached reports.
package services

import (
	"context"
	"errors"

	"salesbook/internal/amqp"
)

var (
	// ErrNoCustomers blocks sale entry until a customer exists.
	ErrNoCustomers = errors.New("no customers registered")
	// ErrNoProducts blocks sale entry until a product exists.
	ErrNoProducts      = errors.New("no products registered")
	ErrUnknownCustomer = errors.New("unknown customer")
	ErrUnknownProduct  = errors.New("unknown product")
)

// Invalidator is told about every successful write so derived data can be dropped.
type Invalidator interface {
	Invalidate()
}

// SalePublisher announces recorded sales. Implemented by *amqp.Client.
type SalePublisher interface {
	PublishSaleRecorded(ctx context.Context, msg *amqp.SaleRecordedMessage) error
}

var _ SalePublisher = (*amqp.Client)(nil)

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}

func orNoop(inv Invalidator) Invalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}
