package http

import (
	"errors"
	"net/http"
	"strconv"

	"salesbook/internal/core"
	"salesbook/internal/tables"
)

type productsView struct {
	page
	Products []core.Product
	Error    string
}

func (s *Server) handleProductsPage(w http.ResponseWriter, r *http.Request) {
	view := productsView{page: page{Title: "Products", Active: "products"}}
	products, err := s.svc.Products.List(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List products failed", "error", err)
		view.Error = "Could not load products"
	}
	view.Products = products
	s.render(w, r, http.StatusOK, "products.html", view)
}

// productForm reads name and price. ok is false when a 422 has been written.
func productForm(w http.ResponseWriter, p *RequestBodyParser) (string, core.Money, bool) {
	cents, err := core.ParsePriceToCents(p.Get("price"))
	if err != nil {
		UnprocessableEntityError("Invalid price").Write(w)
		return "", core.Money{}, false
	}
	return p.Get("name"), core.Money{Cents: cents}, true
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	name, price, ok := productForm(w, p)
	if !ok {
		return
	}

	prod, err := s.svc.Products.Register(r.Context(), name, price)
	if err != nil {
		s.productError(w, r, err)
		return
	}

	s.productListResponse(w, r, prod.ID, "Product "+prod.Name+" registered")
}

func (s *Server) handleEditProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("Product not found").Write(w)
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	name, price, ok := productForm(w, p)
	if !ok {
		return
	}

	prod, err := s.svc.Products.Edit(r.Context(), id, name, price)
	if err != nil {
		s.productError(w, r, err)
		return
	}

	s.productListResponse(w, r, prod.ID, "Product "+prod.Name+" updated")
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError("Product not found").Write(w)
		return
	}

	if err := s.svc.Products.Delete(r.Context(), id); err != nil {
		s.productError(w, r, err)
		return
	}

	s.productListResponse(w, r, id, "Product #"+strconv.FormatInt(id, 10)+" deleted")
}

func (s *Server) productListResponse(w http.ResponseWriter, r *http.Request, id int64, message string) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}

	products, err := s.svc.Products.List(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List products failed", "error", err)
		InternalServerError("Could not load products").Write(w)
		return
	}

	b := NewHTMXResponse().
		TriggerProductsChanged(id).
		TriggerReportRefresh().
		TriggerFormReset().
		TriggerSuccessNotification(message)
	s.renderWith(w, r, b, "product_list", productsView{Products: products})
}

func (s *Server) productError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrEmptyProduct):
		UnprocessableEntityError("Name is required").Write(w)
	case errors.Is(err, core.ErrNameTooLong):
		UnprocessableEntityError("Name is too long").Write(w)
	case errors.Is(err, core.ErrInvalidPrice):
		UnprocessableEntityError("Price cannot be negative").Write(w)
	case errors.Is(err, tables.ErrNotFound):
		NotFoundError("Product not found").Write(w)
	default:
		s.logger.ErrorContext(r.Context(), "Product write failed", "error", err, "path", r.URL.Path)
		InternalServerError("Error saving product").Write(w)
	}
}
