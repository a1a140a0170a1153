package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"salesbook/internal/amqp"
	"salesbook/internal/cli"
	applog "salesbook/internal/log"
	"salesbook/internal/sheets/google"
	"salesbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Mirror configuration invalid", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting salesbook-worker",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName,
		"queue", cfg.AMQPQueue)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	sheet, err := google.New(startCtx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err == nil {
		err = sheet.EnsureHeader(startCtx)
	}
	cancelStart()
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	mirror := worker.NewMirrorWorker(sheet)
	var mirrored atomic.Int64
	handler := func(ctx context.Context, msg *amqp.SaleRecordedMessage) error {
		if err := mirror.HandleSaleRecorded(ctx, msg); err != nil {
			return err
		}
		mirrored.Add(1)
		return nil
	}

	health := &http.Server{
		Addr:              ":" + cfg.WorkerHealthPort,
		Handler:           healthHandler(&mirrored),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := health.Shutdown(ctx); err != nil {
			logger.Error("Health server shutdown error", "error", err)
		}
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.Run(gctx, handler)
	})
	g.Go(func() error {
		logger.Info("Health endpoint listening", "port", cfg.WorkerHealthPort)
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return health.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully", "mirrored", mirrored.Load())
}

func healthHandler(mirrored *atomic.Int64) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "healthy",
			"mirrored": mirrored.Load(),
		})
	})
	return mux
}
