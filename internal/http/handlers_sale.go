package http

import (
	"context"
	"errors"
	"net/http"

	"salesbook/internal/core"
	"salesbook/internal/services"
)

// recentSalesLimit bounds the list under the sale form.
const recentSalesLimit = 20

type saleRow struct {
	Date     core.Date
	Customer string
	Product  string
	Quantity int64
}

type salesView struct {
	page
	Customers []core.Customer
	Products  []core.Product
	Blocked   string
	Today     string
	Recent    []saleRow
	Error     string
}

func blockedMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNoCustomers):
		return "Register at least one customer before recording sales."
	case errors.Is(err, services.ErrNoProducts):
		return "Register at least one product before recording sales."
	}
	return ""
}

func (s *Server) handleSalesPage(w http.ResponseWriter, r *http.Request) {
	view := salesView{
		page:  page{Title: "Sales", Active: "sales"},
		Today: core.Today().String(),
	}

	opts, err := s.svc.Sales.Options(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Load sale options failed", "error", err)
		view.Error = "Could not load customers and products"
		s.render(w, r, http.StatusOK, "sales.html", view)
		return
	}
	view.Customers = opts.Customers
	view.Products = opts.Products
	view.Blocked = blockedMessage(opts.Blocked)

	if view.Recent, err = s.recentSales(r.Context(), opts.Customers); err != nil {
		s.logger.ErrorContext(r.Context(), "Load recent sales failed", "error", err)
		view.Error = "Could not load recent sales"
	}
	s.render(w, r, http.StatusOK, "sales.html", view)
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := s.svc.Sales.Options(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Load sale options failed", "error", err)
		InternalServerError("Error loading customers and products").Write(w)
		return
	}
	if opts.Blocked != nil {
		WarningResponse(blockedMessage(opts.Blocked)).Write(w)
		return
	}

	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	params, err := ParseSaleParams(p)
	if err != nil {
		switch {
		case errors.Is(err, errMissingCustomer), errors.Is(err, errMissingProduct):
			WarningResponse(capitalize(err.Error())).Write(w)
		case errors.Is(err, core.ErrInvalidQuantity):
			UnprocessableEntityError("Quantity must be a whole number of at least 1").Write(w)
		default:
			UnprocessableEntityError(capitalize(err.Error())).Write(w)
		}
		return
	}

	sale, err := s.svc.Sales.Record(ctx, params.CustomerID, params.ProductID, params.Quantity, params.Date)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoCustomers), errors.Is(err, services.ErrNoProducts):
			WarningResponse(blockedMessage(err)).Write(w)
		case errors.Is(err, services.ErrUnknownCustomer):
			UnprocessableEntityError("Unknown customer").Write(w)
		case errors.Is(err, services.ErrUnknownProduct):
			UnprocessableEntityError("Unknown product").Write(w)
		case errors.Is(err, core.ErrInvalidQuantity):
			UnprocessableEntityError("Quantity must be a whole number of at least 1").Write(w)
		default:
			s.logger.ErrorContext(ctx, "Record sale failed", "error", err,
				"customer_id", params.CustomerID, "product_id", params.ProductID)
			InternalServerError("Error saving sale").Write(w)
		}
		return
	}
	s.countSale()

	if !isHTMX(r) {
		http.Redirect(w, r, "/sales", http.StatusSeeOther)
		return
	}

	recent, err := s.recentSales(ctx, opts.Customers)
	if err != nil {
		s.logger.ErrorContext(ctx, "Load recent sales failed", "error", err)
		InternalServerError("Could not load recent sales").Write(w)
		return
	}

	b := NewHTMXResponse().
		TriggerSaleRecorded(sale.CustomerID, sale.Date.String()).
		TriggerReportRefresh().
		TriggerFormReset().
		TriggerSuccessNotification("Sale recorded: " + sale.ProductName)
	s.renderWith(w, r, b, "sale_list", salesView{Recent: recent})
}

// recentSales lists the latest sales first, resolving customer names.
func (s *Server) recentSales(ctx context.Context, customers []core.Customer) ([]saleRow, error) {
	sales, err := s.svc.Sales.List(ctx)
	if err != nil {
		return nil, err
	}
	names := customerNames(customers)

	rows := make([]saleRow, 0, recentSalesLimit)
	for i := len(sales) - 1; i >= 0 && len(rows) < recentSalesLimit; i-- {
		sale := sales[i]
		rows = append(rows, saleRow{
			Date:     sale.Date,
			Customer: names.name(sale.CustomerID),
			Product:  sale.ProductName,
			Quantity: sale.Quantity,
		})
	}
	return rows, nil
}

type nameIndex map[int64]string

func customerNames(customers []core.Customer) nameIndex {
	idx := make(nameIndex, len(customers))
	for _, c := range customers {
		idx[c.ID] = c.Name
	}
	return idx
}

// name falls back to "#id" for customers that were deleted.
func (n nameIndex) name(id int64) string {
	if name, ok := n[id]; ok {
		return name
	}
	return "#" + itoa(id)
}
