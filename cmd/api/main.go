package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vedion/refurbed-sync/api"
	"github.com/vedion/refurbed-sync/internal/fetch"
	"github.com/vedion/refurbed-sync/internal/idosell"
	"github.com/vedion/refurbed-sync/internal/push"
	"github.com/vedion/refurbed-sync/internal/reconcile"
	"github.com/vedion/refurbed-sync/internal/refurbed"
	"github.com/vedion/refurbed-sync/internal/sheet"
	"github.com/vedion/refurbed-sync/pkg/config"
	"github.com/vedion/refurbed-sync/pkg/logger"
	"github.com/vedion/refurbed-sync/pkg/metrics"
	"github.com/vedion/refurbed-sync/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	store, err := sheet.NewGoogleStore(context.Background(), cfg.GCP, cfg.Sheets.SpreadsheetID)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap sheets store", err)
		os.Exit(1)
	}

	marketplace, err := refurbed.NewClient(refurbed.ClientParams{Config: cfg.Refurbed, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create marketplace client", err)
		os.Exit(1)
	}
	erp, err := idosell.NewClient(idosell.ClientParams{Config: cfg.IdoSell, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create erp client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	flowMetrics := metrics.NewFlowMetrics(registry)

	fetchSvc, err := fetch.NewService(fetch.ServiceParams{
		Store:       store,
		Marketplace: marketplace,
		Logger:      logg,
		Metrics:     flowMetrics,
		OrdersSheet: cfg.Sheets.OrdersSheet,
		ConfigSheet: cfg.Sheets.ConfigSheet,
		PageLimit:   cfg.Sync.PageLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fetch service", err)
		os.Exit(1)
	}
	pushSvc, err := push.NewService(push.ServiceParams{
		Store:       store,
		Marketplace: marketplace,
		Erp:         erp,
		Logger:      logg,
		Metrics:     flowMetrics,
		OrdersSheet: cfg.Sheets.OrdersSheet,
		ConfigSheet: cfg.Sheets.ConfigSheet,
		RatePerSec:  cfg.Sync.StateRatePerSec,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create push service", err)
		os.Exit(1)
	}
	reconcileSvc, err := reconcile.NewService(reconcile.ServiceParams{
		Store:       store,
		Marketplace: marketplace,
		Erp:         erp,
		Logger:      logg,
		Metrics:     flowMetrics,
		OrdersSheet: cfg.Sheets.OrdersSheet,
		ConfigSheet: cfg.Sheets.ConfigSheet,
		RatePerSec:  cfg.Sync.StateRatePerSec,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}
	archiver, err := sheet.NewArchiver(sheet.ArchiverParams{
		Store:        store,
		Logger:       logg,
		Metrics:      flowMetrics,
		OrdersSheet:  cfg.Sheets.OrdersSheet,
		ArchiveSheet: cfg.Sheets.ArchiveSheet,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create archiver", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(api.RouterParams{
			Config:    cfg,
			Logger:    logg,
			Redis:     redisClient,
			Fetch:     fetchSvc,
			Push:      pushSvc,
			Reconcile: reconcileSvc,
			Archive:   archiver,
			Registry:  registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
