package services

import (
	"context"
	"fmt"

	"salesbook/internal/amqp"
	"salesbook/internal/core"
	applog "salesbook/internal/log"
	"salesbook/internal/tables"
)

type SaleStore interface {
	tables.Loader
	tables.SaleWriter
}

type SaleService struct {
	store     SaleStore
	publisher SalePublisher
	onChange  Invalidator
	today     func() core.Date
	logger    *applog.Logger
	events    *applog.StructuredLogger
}

// NewSaleService wires sale recording. publisher may be nil.
func NewSaleService(store SaleStore, publisher SalePublisher, onChange Invalidator) *SaleService {
	logger := applog.Default(applog.ComponentSale)
	return &SaleService{
		store:     store,
		publisher: publisher,
		onChange:  orNoop(onChange),
		today:     core.Today,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
	}
}

// SaleOptions feeds the sale form. Blocked is ErrNoCustomers or
// ErrNoProducts when a sale cannot be entered yet.
type SaleOptions struct {
	Customers []core.Customer
	Products  []core.Product
	Blocked   error
}

func (s *SaleService) Options(ctx context.Context) (SaleOptions, error) {
	customers, err := s.store.LoadCustomers(ctx)
	if err != nil {
		return SaleOptions{}, fmt.Errorf("load customers: %w", err)
	}
	products, err := s.store.LoadProducts(ctx)
	if err != nil {
		return SaleOptions{}, fmt.Errorf("load products: %w", err)
	}
	opts := SaleOptions{Customers: customers, Products: products}
	switch {
	case len(customers) == 0:
		opts.Blocked = ErrNoCustomers
	case len(products) == 0:
		opts.Blocked = ErrNoProducts
	}
	return opts, nil
}

// Record appends a sale for an existing customer and product. A zero date
// means today. The product's current name is stored alongside its id.
func (s *SaleService) Record(ctx context.Context, customerID, productID, quantity int64, date core.Date) (core.Sale, error) {
	opts, err := s.Options(ctx)
	if err != nil {
		return core.Sale{}, err
	}
	if opts.Blocked != nil {
		return core.Sale{}, opts.Blocked
	}

	customer, ok := findCustomer(opts.Customers, customerID)
	if !ok {
		return core.Sale{}, fmt.Errorf("customer %d: %w", customerID, ErrUnknownCustomer)
	}
	product, ok := findProduct(opts.Products, productID)
	if !ok {
		return core.Sale{}, fmt.Errorf("product %d: %w", productID, ErrUnknownProduct)
	}
	if quantity < 1 {
		return core.Sale{}, core.ErrInvalidQuantity
	}
	if date.IsEmpty() {
		date = s.today()
	}

	sale := core.Sale{
		CustomerID:  customer.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Date:        date,
	}
	if err := sale.Validate(); err != nil {
		return core.Sale{}, err
	}

	saved, err := s.store.AppendSale(ctx, sale)
	if err != nil {
		return core.Sale{}, fmt.Errorf("save sale: %w", err)
	}
	s.onChange.Invalidate()
	s.events.LogSaleRecorded(ctx, saved.CustomerID, saved.ProductName, saved.Quantity, saved.Date.String())

	s.publish(ctx, saved, customer, product)
	return saved, nil
}

// publish is best effort; the sale is already stored.
func (s *SaleService) publish(ctx context.Context, sale core.Sale, c core.Customer, p core.Product) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewSaleRecordedMessage(sale, c.Name, p.Price)
	if err := s.publisher.PublishSaleRecorded(ctx, msg); err != nil {
		fields := applog.NewFields()
		fields[applog.FieldMessageID] = msg.ID
		s.events.LogError(ctx, "Failed to publish sale event", err, applog.ComponentAMQP, applog.OpPublish, fields)
	}
}

func (s *SaleService) List(ctx context.Context) ([]core.Sale, error) {
	sales, err := s.store.LoadSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return sales, nil
}

func findCustomer(cs []core.Customer, id int64) (core.Customer, bool) {
	for _, c := range cs {
		if c.ID == id {
			return c, true
		}
	}
	return core.Customer{}, false
}

func findProduct(ps []core.Product, id int64) (core.Product, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return core.Product{}, false
}
