package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"salesbook/internal/core"
	applog "salesbook/internal/log"
	"salesbook/internal/middleware/ratelimit"
	"salesbook/internal/middleware/security"
	"salesbook/internal/middleware/trace"
	"salesbook/internal/services"
	appweb "salesbook/web"
)

// Services are the application services the handlers call.
type Services struct {
	Customers *services.CustomerService
	Products  *services.ProductService
	Sales     *services.SaleService
	Reports   *services.ReportService
}

// Options tune the middleware stack. Zero values pick the defaults.
type Options struct {
	RateLimitPerMinute int
	// TrustedProxies are CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	svc       Services
	logger    *applog.Logger

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	salesRecorded int64
	uptime        time.Time
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run http.Server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		svc:              svc,
		logger:           logger,
		securityDetector: security.NewDetector(),
		rateLimiter:      ratelimit.NewLimiter(rlConfig),
		appMetrics:       appMetrics{uptime: time.Now()},
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(logger.WithComponent(applog.ComponentTrace), s.securityDetector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /customers", s.handleCustomersPage)
	mux.HandleFunc("POST /customers", s.handleCreateCustomer)
	mux.HandleFunc("POST /customers/{id}/edit", s.handleEditCustomer)
	mux.HandleFunc("POST /customers/{id}/delete", s.handleDeleteCustomer)

	mux.HandleFunc("GET /products", s.handleProductsPage)
	mux.HandleFunc("POST /products", s.handleCreateProduct)
	mux.HandleFunc("POST /products/{id}/edit", s.handleEditProduct)
	mux.HandleFunc("POST /products/{id}/delete", s.handleDeleteProduct)

	mux.HandleFunc("GET /sales", s.handleSalesPage)
	mux.HandleFunc("POST /sales", s.handleRecordSale)

	mux.HandleFunc("GET /report", s.handleReportPage)
	mux.HandleFunc("GET /ui/report", s.handleReportPartial)
	mux.HandleFunc("GET /api/report/monthly", s.handleMonthlyChart)
	mux.HandleFunc("GET /api/report/products", s.handleProductsChart)
	mux.HandleFunc("GET /report.xlsx", s.handleReportXLSX)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// chain wraps the mux, outermost first: trace, suspicious request detection,
// security headers, POST rate limiting, request logger.
func (s *Server) chain(h http.Handler) http.Handler {
	h = applog.Middleware(s.logger)(h)
	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests, try again in a minute").Write(w)
	})(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return h
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

var templateFuncs = template.FuncMap{
	"brl": func(m core.Money) string { return m.String() },
	"date": func(d core.Date) string {
		if d.IsEmpty() {
			return "-"
		}
		return d.String()
	},
}

func (s *Server) countSale() {
	atomic.AddInt64(&s.appMetrics.salesRecorded, 1)
}
