package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"salesbook/internal/core"
	"salesbook/internal/report"
)

func TestParseReportParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    ReportParams
		wantErr error
	}{
		{
			name:  "defaults",
			query: "",
			want:  ReportParams{Customer: report.AllCustomers()},
		},
		{
			name:  "all customers with range",
			query: "customer=all&start=2024-01-01&end=2024-01-31",
			want: ReportParams{
				Customer: report.AllCustomers(),
				Start:    core.NewDate(2024, 1, 1),
				End:      core.NewDate(2024, 1, 31),
			},
		},
		{
			name:  "single customer",
			query: "customer=12",
			want:  ReportParams{Customer: report.ForCustomer(12)},
		},
		{
			name:  "customer zero",
			query: "customer=0",
			want:  ReportParams{Customer: report.ForCustomer(0)},
		},
		{name: "bad customer", query: "customer=abc", wantErr: errInvalidCustomerParam},
		{name: "negative customer", query: "customer=-3", wantErr: errInvalidCustomerParam},
		{name: "bad start", query: "start=2024-13-01", wantErr: errInvalidStartDate},
		{name: "bad end", query: "end=yesterday", wantErr: errInvalidEndDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseReportParams(q)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseReportParams() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Customer != tt.want.Customer || !got.Start.Equal(tt.want.Start.Time) || !got.End.Equal(tt.want.End.Time) {
				t.Errorf("ParseReportParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSaleParams(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    SaleParams
		wantErr error
	}{
		{
			name: "form with date",
			body: "customer_id=1&product_id=2&quantity=3&date=2024-05-06",
			want: SaleParams{CustomerID: 1, ProductID: 2, Quantity: 3, Date: core.NewDate(2024, 5, 6)},
		},
		{
			name: "json without date",
			body: `{"customer_id": "4", "product_id": 5, "quantity": 1}`,
			want: SaleParams{CustomerID: 4, ProductID: 5, Quantity: 1},
		},
		{name: "missing customer", body: "product_id=2&quantity=1", wantErr: errMissingCustomer},
		{name: "missing product", body: "customer_id=1&quantity=1", wantErr: errMissingProduct},
		{name: "zero quantity", body: "customer_id=1&product_id=2&quantity=0", wantErr: core.ErrInvalidQuantity},
		{name: "bad date", body: "customer_id=1&product_id=2&quantity=1&date=06/05/2024", wantErr: errInvalidSaleDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := ParseSaleParams(p)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseSaleParams() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.CustomerID != tt.want.CustomerID || got.ProductID != tt.want.ProductID ||
				got.Quantity != tt.want.Quantity || !got.Date.Equal(tt.want.Date.Time) {
				t.Errorf("ParseSaleParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}
