package http

import (
	"errors"
	"net/http"
	"strconv"

	"salesbook/internal/core"
	"salesbook/internal/tables"
)

type customersView struct {
	page
	Customers []core.Customer
	Error     string
}

func (s *Server) handleCustomersPage(w http.ResponseWriter, r *http.Request) {
	view := customersView{page: page{Title: "Customers", Active: "customers"}}
	customers, err := s.svc.Customers.List(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List customers failed", "error", err)
		view.Error = "Could not load customers"
	}
	view.Customers = customers
	s.render(w, r, http.StatusOK, "customers.html", view)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	c, err := s.svc.Customers.Register(r.Context(), p.Get("name"), p.Get("phone"))
	if err != nil {
		s.customerError(w, r, err)
		return
	}

	s.customerListResponse(w, r, c.ID, "Customer "+c.Name+" registered")
}

func (s *Server) handleEditCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("Customer not found").Write(w)
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	c, err := s.svc.Customers.Edit(r.Context(), id, p.Get("name"), p.Get("phone"))
	if err != nil {
		s.customerError(w, r, err)
		return
	}

	s.customerListResponse(w, r, c.ID, "Customer "+c.Name+" updated")
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("Customer not found").Write(w)
		return
	}

	if err := s.svc.Customers.Delete(r.Context(), id); err != nil {
		s.customerError(w, r, err)
		return
	}

	s.customerListResponse(w, r, id, "Customer #"+strconv.FormatInt(id, 10)+" deleted")
}

// customerListResponse answers a successful write: the refreshed list for
// htmx, a redirect for plain form posts.
func (s *Server) customerListResponse(w http.ResponseWriter, r *http.Request, id int64, message string) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return
	}

	customers, err := s.svc.Customers.List(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List customers failed", "error", err)
		InternalServerError("Could not load customers").Write(w)
		return
	}

	b := NewHTMXResponse().
		TriggerCustomersChanged(id).
		TriggerReportRefresh().
		TriggerFormReset().
		TriggerSuccessNotification(message)
	s.renderWith(w, r, b, "customer_list", customersView{Customers: customers})
}

func (s *Server) customerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		UnprocessableEntityError("Name is required").Write(w)
	case errors.Is(err, core.ErrNameTooLong):
		UnprocessableEntityError("Name is too long").Write(w)
	case errors.Is(err, core.ErrEmptyPhone):
		UnprocessableEntityError("Phone is required").Write(w)
	case errors.Is(err, tables.ErrNotFound):
		NotFoundError("Customer not found").Write(w)
	default:
		s.logger.ErrorContext(r.Context(), "Customer write failed", "error", err, "path", r.URL.Path)
		InternalServerError("Error saving customer").Write(w)
	}
}
