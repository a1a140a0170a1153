package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"salesbook/internal/core"
	"salesbook/internal/export"
	"salesbook/internal/report"
)

type lineView struct {
	Date      core.Date
	Customer  string
	Product   string
	Quantity  int64
	UnitPrice core.Money
	Amount    core.Money
	Matched   bool
}

type reportView struct {
	page
	Customers []core.Customer
	Customer  string // "all" or the selected id
	Start     string
	End       string

	// NoSales is true when no sale exists at all; Empty when the filter
	// matches nothing.
	NoSales bool
	Empty   bool

	Monthly       []report.MonthTotal
	Products      []report.ProductTotal
	Lines         []lineView
	Total         core.Money
	TotalQuantity int64

	MonthlyURL  template.URL
	ProductsURL template.URL
	ExportURL   template.URL
	Error       string
}

// paramError marks a malformed report query.
type paramError struct{ err error }

func (e paramError) Error() string { return e.err.Error() }
func (e paramError) Unwrap() error { return e.err }

func isParamError(err error) bool {
	var pe paramError
	return errors.As(err, &pe)
}

// loadReport parses the query, fills default dates and builds the report.
func (s *Server) loadReport(ctx context.Context, query url.Values) (report.Report, []core.Customer, error) {
	params, err := ParseReportParams(query)
	if err != nil {
		return report.Report{}, nil, paramError{err}
	}
	flt, err := s.svc.Reports.Resolve(ctx, params.Customer, params.Start, params.End)
	if err != nil {
		return report.Report{}, nil, err
	}
	r, err := s.svc.Reports.Report(ctx, flt)
	if err != nil {
		return report.Report{}, nil, err
	}
	customers, err := s.svc.Customers.List(ctx)
	if err != nil {
		return report.Report{}, nil, err
	}
	return r, customers, nil
}

func (s *Server) buildReportView(ctx context.Context, query url.Values) (reportView, int) {
	view := reportView{page: page{Title: "Report", Active: "report"}, Customer: "all"}

	r, customers, err := s.loadReport(ctx, query)
	if err != nil {
		if isParamError(err) {
			view.Error = capitalize(err.Error())
			view.Customers, _ = s.svc.Customers.List(ctx)
			return view, http.StatusBadRequest
		}
		s.logger.ErrorContext(ctx, "Build report failed", "error", err)
		view.Error = "Could not build the report"
		return view, http.StatusInternalServerError
	}

	hasSales, err := s.svc.Reports.HasSales(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Check sales failed", "error", err)
	}

	view.Customers = customers
	view.Customer = r.Filter.Customer.String()
	view.Start = r.Filter.Start.String()
	view.End = r.Filter.End.String()
	view.NoSales = !hasSales
	view.Empty = r.Empty()
	view.Monthly = r.Monthly
	view.Products = r.Products
	view.Total = r.Valuation.Total
	view.TotalQuantity = r.TotalQuantity()

	names := customerNames(customers)
	for _, l := range r.Valuation.Lines {
		view.Lines = append(view.Lines, lineView{
			Date:      l.Date,
			Customer:  names.name(l.CustomerID),
			Product:   l.Product,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
			Matched:   l.Matched,
		})
	}

	q := url.Values{"customer": {view.Customer}, "start": {view.Start}, "end": {view.End}}.Encode()
	view.MonthlyURL = template.URL("/api/report/monthly?" + q)
	view.ProductsURL = template.URL("/api/report/products?" + q)
	view.ExportURL = template.URL("/report.xlsx?" + q)
	return view, http.StatusOK
}

func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	view, status := s.buildReportView(r.Context(), r.URL.Query())
	s.render(w, r, status, "report.html", view)
}

// handleReportPartial renders only the report section for htmx swaps.
func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	view, status := s.buildReportView(r.Context(), r.URL.Query())
	s.render(w, r, status, "report_partial", view)
}

type chartData struct {
	Labels []string `json:"labels"`
	Values []int64  `json:"values"`
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, r, func(rep report.Report) chartData {
		data := chartData{Labels: []string{}, Values: []int64{}}
		for _, m := range rep.Monthly {
			data.Labels = append(data.Labels, m.Month)
			data.Values = append(data.Values, m.Quantity)
		}
		return data
	})
}

func (s *Server) handleProductsChart(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, r, func(rep report.Report) chartData {
		data := chartData{Labels: []string{}, Values: []int64{}}
		for _, p := range rep.Products {
			data.Labels = append(data.Labels, p.Product)
			data.Values = append(data.Values, p.Quantity)
		}
		return data
	})
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, series func(report.Report) chartData) {
	w.Header().Set("Content-Type", "application/json")

	rep, _, err := s.loadReport(r.Context(), r.URL.Query())
	if err != nil {
		status := http.StatusInternalServerError
		if isParamError(err) {
			status = http.StatusBadRequest
		} else {
			s.logger.ErrorContext(r.Context(), "Chart data failed", "error", err, "path", r.URL.Path)
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "could not build chart data"})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(series(rep))
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, customers, err := s.loadReport(r.Context(), r.URL.Query())
	if err != nil {
		if isParamError(err) {
			BadRequestError("Invalid report filter").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Export report failed", "error", err)
		InternalServerError("Could not build the report").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rep, customers); err != nil {
		s.logger.ErrorContext(r.Context(), "Write workbook failed", "error", err)
		InternalServerError("Could not export the report").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(rep.Filter)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
