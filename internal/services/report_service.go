package services

import (
	"context"
	"fmt"

	"salesbook/internal/cache"
	"salesbook/internal/core"
	applog "salesbook/internal/log"
	"salesbook/internal/report"
	"salesbook/internal/tables"
)

// ReportService builds reports from store snapshots and caches them per
// filter until the next write.
type ReportService struct {
	loader tables.Loader
	cache  cache.Cache[report.Report]
	today  func() core.Date
	events *applog.StructuredLogger
}

var _ Invalidator = (*ReportService)(nil)

// NewReportService uses c for caching; nil disables caching.
func NewReportService(loader tables.Loader, c cache.Cache[report.Report]) *ReportService {
	return &ReportService{
		loader: loader,
		cache:  c,
		today:  core.Today,
		events: applog.NewStructuredLogger(applog.Default(applog.ComponentReport)),
	}
}

func cacheKey(f report.Filter) string {
	return fmt.Sprintf("%s|%s|%s", f.Start.String(), f.End.String(), f.Customer)
}

func (s *ReportService) Report(ctx context.Context, f report.Filter) (report.Report, error) {
	key := cacheKey(f)
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			s.events.LogReportBuilt(ctx, f.Start.String(), f.End.String(), len(r.Sales), r.Valuation.Total.Cents, true)
			return r, nil
		}
	}

	t, err := tables.Snapshot(ctx, s.loader)
	if err != nil {
		return report.Report{}, fmt.Errorf("load tables: %w", err)
	}
	r := report.Build(t, f)

	if s.cache != nil {
		s.cache.Set(key, r)
	}
	s.events.LogReportBuilt(ctx, f.Start.String(), f.End.String(), len(r.Sales), r.Valuation.Total.Cents, false)
	return r, nil
}

// Range returns the earliest and latest sale dates. ok is false when there
// are no dated sales.
func (s *ReportService) Range(ctx context.Context) (start, end core.Date, ok bool, err error) {
	sales, err := s.loader.LoadSales(ctx)
	if err != nil {
		return core.Date{}, core.Date{}, false, fmt.Errorf("load sales: %w", err)
	}
	start, end, ok = report.DefaultRange(sales)
	return start, end, ok, nil
}

// Resolve fills missing bounds from the sale range, or today when no sales exist.
func (s *ReportService) Resolve(ctx context.Context, sel report.CustomerSelector, start, end core.Date) (report.Filter, error) {
	f := report.Filter{Start: start, End: end, Customer: sel}
	if !start.IsEmpty() && !end.IsEmpty() {
		return f, nil
	}
	first, last, ok, err := s.Range(ctx)
	if err != nil {
		return report.Filter{}, err
	}
	if !ok {
		first, last = s.today(), s.today()
	}
	if f.Start.IsEmpty() {
		f.Start = first
	}
	if f.End.IsEmpty() {
		f.End = last
	}
	return f, nil
}

// HasSales reports whether any sale exists at all.
func (s *ReportService) HasSales(ctx context.Context) (bool, error) {
	sales, err := s.loader.LoadSales(ctx)
	if err != nil {
		return false, fmt.Errorf("load sales: %w", err)
	}
	return len(sales) > 0, nil
}

func (s *ReportService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// CacheSize is the number of cached reports, 0 when caching is off.
func (s *ReportService) CacheSize() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Size()
}
