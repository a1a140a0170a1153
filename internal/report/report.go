// Package report turns the customer, product and sale tables into the
// aggregates shown on the sales report: quantity per month, quantity per
// product and the valuation of every sale at current prices.
//
// Everything here is a pure function of its inputs. Callers load the tables,
// call Build and render the result; nothing is cached or mutated.
package report

import (
	"sort"
	"strconv"

	"salesbook/internal/core"
)

// Tables is the in-memory view of the three record tables.
type Tables struct {
	Customers []core.Customer
	Products  []core.Product
	Sales     []core.Sale
}

// CustomerSelector restricts a report to one customer or leaves it open.
// The zero value selects all customers. Customer id 0 is selectable: it is
// where sales with an unreadable customer cell end up.
type CustomerSelector struct {
	id     int64
	single bool
}

// AllCustomers selects every sale regardless of customer.
func AllCustomers() CustomerSelector { return CustomerSelector{} }

// ForCustomer selects the sales of a single customer id.
func ForCustomer(id int64) CustomerSelector { return CustomerSelector{id: id, single: true} }

// All reports whether the selector matches every customer.
func (s CustomerSelector) All() bool { return !s.single }

// ID returns the selected customer id. It is meaningless when All is true.
func (s CustomerSelector) ID() int64 { return s.id }

// String returns "all" or the selected id.
func (s CustomerSelector) String() string {
	if s.All() {
		return "all"
	}
	return strconv.FormatInt(s.id, 10)
}

// Filter holds the user's report selection. Start and End are inclusive.
type Filter struct {
	Start    core.Date
	End      core.Date
	Customer CustomerSelector
}

// MonthTotal is the quantity sold in one calendar month.
type MonthTotal struct {
	Month    string // YYYY-MM
	Quantity int64
}

// ProductTotal is the quantity sold of one product.
type ProductTotal struct {
	Product  string
	Quantity int64
}

// ValuationLine values a single sale at the product's current price.
type ValuationLine struct {
	Date       core.Date
	CustomerID int64
	Product    string
	Quantity   int64
	UnitPrice  core.Money
	Amount     core.Money
	// Matched is false when the sale's product is no longer in the product
	// table; such lines carry a zero price.
	Matched bool
}

// Valuation is the line-item listing plus its total.
type Valuation struct {
	Lines []ValuationLine
	Total core.Money
}

// Report bundles every aggregate for one Filter.
type Report struct {
	Filter    Filter
	Sales     []core.Sale
	Monthly   []MonthTotal
	Products  []ProductTotal
	Valuation Valuation
}

// Empty reports whether no sale survived the filters.
func (r Report) Empty() bool { return len(r.Sales) == 0 }

// TotalQuantity sums the quantity of the filtered sales.
func (r Report) TotalQuantity() int64 {
	var n int64
	for _, s := range r.Sales {
		n += s.Quantity
	}
	return n
}

// Build runs the whole pipeline: date range, customer, then the three
// aggregations.
func Build(t Tables, f Filter) Report {
	sales := FilterByDateRange(t.Sales, f.Start, f.End)
	sales = FilterByCustomer(sales, f.Customer)
	return Report{
		Filter:    f,
		Sales:     sales,
		Monthly:   MonthlyTotals(sales),
		Products:  ProductTotals(sales),
		Valuation: Valuate(sales, t.Products),
	}
}

// FilterByDateRange keeps the sales dated within [start, end]. The bounds are
// not reordered: start after end yields nothing. Sales without a valid date
// are dropped.
func FilterByDateRange(sales []core.Sale, start, end core.Date) []core.Sale {
	out := make([]core.Sale, 0, len(sales))
	if start.After(end.Time) {
		return out
	}
	for _, s := range sales {
		if s.Date.IsZero() {
			continue
		}
		if s.Date.Before(start.Time) || s.Date.After(end.Time) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterByCustomer keeps the sales of the selected customer. An id that no
// sale references gives an empty result.
func FilterByCustomer(sales []core.Sale, sel CustomerSelector) []core.Sale {
	if sel.All() {
		return sales
	}
	out := make([]core.Sale, 0, len(sales))
	for _, s := range sales {
		if s.CustomerID == sel.ID() {
			out = append(out, s)
		}
	}
	return out
}

// MonthlyTotals sums quantity per calendar month, ascending. Months without
// sales are absent.
func MonthlyTotals(sales []core.Sale) []MonthTotal {
	byMonth := make(map[string]int64)
	for _, s := range sales {
		if s.Date.IsZero() {
			continue
		}
		byMonth[s.Date.MonthKey()] += s.Quantity
	}
	out := make([]MonthTotal, 0, len(byMonth))
	for m, q := range byMonth {
		out = append(out, MonthTotal{Month: m, Quantity: q})
	}
	// YYYY-MM sorts lexically in calendar order.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ProductTotals sums quantity per product name, ordered by name.
func ProductTotals(sales []core.Sale) []ProductTotal {
	byProduct := make(map[string]int64)
	for _, s := range sales {
		byProduct[s.ProductName] += s.Quantity
	}
	out := make([]ProductTotal, 0, len(byProduct))
	for p, q := range byProduct {
		out = append(out, ProductTotal{Product: p, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out
}

// Valuate prices every sale with the current price of its product.
//
// A product matches a sale by ProductID only when it still carries the sale's
// product name, since max_plus_one reuses the id of a deleted product.
// Otherwise the sale is looked up by exact name. Sales whose product cannot
// be found are kept with a zero price. Prices are today's prices, not the price at the
// time of the sale.
func Valuate(sales []core.Sale, products []core.Product) Valuation {
	byID := make(map[int64]core.Product, len(products))
	byName := make(map[string]core.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
		// First product wins when names repeat, like a first-match lookup.
		if _, dup := byName[p.Name]; !dup {
			byName[p.Name] = p
		}
	}

	v := Valuation{Lines: make([]ValuationLine, 0, len(sales))}
	for _, s := range sales {
		p, ok := lookupProduct(s, byID, byName)
		line := ValuationLine{
			Date:       s.Date,
			CustomerID: s.CustomerID,
			Product:    s.ProductName,
			Quantity:   s.Quantity,
			Matched:    ok,
		}
		if ok {
			line.UnitPrice = p.Price
			line.Amount = p.Price.Times(s.Quantity)
		}
		v.Total = v.Total.Add(line.Amount)
		v.Lines = append(v.Lines, line)
	}
	return v
}

func lookupProduct(s core.Sale, byID map[int64]core.Product, byName map[string]core.Product) (core.Product, bool) {
	if s.ProductID > 0 {
		if p, ok := byID[s.ProductID]; ok && p.Name == s.ProductName {
			return p, true
		}
	}
	p, ok := byName[s.ProductName]
	return p, ok
}

// DefaultRange returns the earliest and latest valid sale dates, which the
// report form uses as its initial bounds. ok is false when no sale has a
// valid date.
func DefaultRange(sales []core.Sale) (start, end core.Date, ok bool) {
	for _, s := range sales {
		if s.Date.IsZero() {
			continue
		}
		if !ok || s.Date.Before(start.Time) {
			start = s.Date
		}
		if !ok || s.Date.After(end.Time) {
			end = s.Date
		}
		ok = true
	}
	return start, end, ok
}
