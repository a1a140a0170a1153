// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// report filters from query strings and entity forms from form or JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"salesbook/internal/core"
	"salesbook/internal/report"
)

// maxBodyBytes caps form and JSON bodies.
const maxBodyBytes = 1 << 20

var (
	errInvalidCustomerParam = errors.New("invalid customer selection")
	errInvalidStartDate     = errors.New("invalid start date")
	errInvalidEndDate       = errors.New("invalid end date")
	errInvalidSaleDate      = errors.New("invalid sale date")
	errMissingCustomer      = errors.New("select a customer")
	errMissingProduct       = errors.New("select a product")
)

// ReportParams is the report selection read from a query string. Empty
// dates are filled in later from the sales range.
type ReportParams struct {
	Customer report.CustomerSelector
	Start    core.Date
	End      core.Date
}

// ParseReportParams reads customer=all|ID, start and end (YYYY-MM-DD).
// A missing customer means all customers.
func ParseReportParams(query url.Values) (ReportParams, error) {
	var p ReportParams

	switch v := strings.TrimSpace(query.Get("customer")); v {
	case "", "all":
		p.Customer = report.AllCustomers()
	default:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return ReportParams{}, errInvalidCustomerParam
		}
		p.Customer = report.ForCustomer(id)
	}

	var err error
	if p.Start, err = parseOptionalDate(query.Get("start")); err != nil {
		return ReportParams{}, errInvalidStartDate
	}
	if p.End, err = parseOptionalDate(query.Get("end")); err != nil {
		return ReportParams{}, errInvalidEndDate
	}
	return p, nil
}

func parseOptionalDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

// SaleParams is the sale form. A zero Date means today.
type SaleParams struct {
	CustomerID int64
	ProductID  int64
	Quantity   int64
	Date       core.Date
}

// ParseSaleParams validates the shape of the sale form; existence of the
// customer and product is checked by the sale service.
func ParseSaleParams(p *RequestBodyParser) (SaleParams, error) {
	var sp SaleParams

	customerID, err := strconv.ParseInt(p.Get("customer_id"), 10, 64)
	if err != nil || customerID <= 0 {
		return SaleParams{}, errMissingCustomer
	}
	productID, err := strconv.ParseInt(p.Get("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return SaleParams{}, errMissingProduct
	}
	qty, err := strconv.ParseInt(p.Get("quantity"), 10, 64)
	if err != nil || qty < 1 {
		return SaleParams{}, core.ErrInvalidQuantity
	}
	date, err := parseOptionalDate(p.Get("date"))
	if err != nil {
		return SaleParams{}, errInvalidSaleDate
	}

	sp.CustomerID, sp.ProductID, sp.Quantity, sp.Date = customerID, productID, qty, date
	return sp, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody reads the request body or writes a 400 response. ok is false
// when the response has been written.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Malformed request").Write(w)
		return nil, false
	}
	return p, true
}
