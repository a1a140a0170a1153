package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"salesbook/internal/cache"
	"salesbook/internal/cli"
	apphttp "salesbook/internal/http"
	applog "salesbook/internal/log"
	"salesbook/internal/report"
	"salesbook/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting salesbook", "backend", cfg.DataBackend, "id_policy", cfg.IDPolicy)

	res := cli.InitBackend(context.Background(), logger, cfg)

	reportCache := cache.NewLRUCache[report.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)

	reports := services.NewReportService(res.Store, reportCache)

	// A nil *amqp.Client must not reach the interface.
	var publisher services.SalePublisher
	if res.Publisher != nil {
		publisher = res.Publisher
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Customers: services.NewCustomerService(res.Store, reports),
		Products:  services.NewProductService(res.Store, reports),
		Sales:     services.NewSaleService(res.Store, publisher, reports),
		Reports:   reports,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Listening", "port", cfg.Port, "mirror", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
