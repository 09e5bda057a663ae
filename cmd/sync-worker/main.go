package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vedion/refurbed-sync/internal/cron"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
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

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	flowMetrics := metrics.NewFlowMetrics(prometheus.DefaultRegisterer)

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

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cfg.Sheets.SpreadsheetID), cfg.Sync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	if err := registerJobs(registry, cfg, logg, fetchSvc, pushSvc, reconcileSvc, archiver); err != nil {
		logg.Error(context.Background(), "failed to register jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting sync worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sync worker shutting down gracefully")
}

func registerJobs(
	registry *cron.Registry,
	cfg *config.Config,
	logg *logger.Logger,
	fetchSvc *fetch.Service,
	pushSvc *push.Service,
	reconcileSvc *reconcile.Service,
	archiver *sheet.Archiver,
) error {
	fetchJob, err := cron.NewFetchJob(fetchSvc, logg)
	if err != nil {
		return err
	}
	recoveryJob, err := cron.NewRecoveryJob(fetchSvc, logg)
	if err != nil {
		return err
	}
	refreshJob, err := cron.NewStateRefreshJob(fetchSvc, logg)
	if err != nil {
		return err
	}
	pushJob, err := cron.NewPushJob(pushSvc, logg)
	if err != nil {
		return err
	}
	reconcileJob, err := cron.NewReconcileJob(reconcileSvc, logg)
	if err != nil {
		return err
	}
	archiveJob, err := cron.NewArchiveJob(archiver, logg)
	if err != nil {
		return err
	}

	registry.Register(fetchJob, cfg.Sync.FetchInterval)
	registry.Register(pushJob, cfg.Sync.PushInterval)
	registry.Register(reconcileJob, cfg.Sync.ReconcileInterval)
	registry.Register(recoveryJob, cfg.Sync.RefreshInterval)
	registry.Register(refreshJob, cfg.Sync.RefreshInterval)
	registry.Register(archiveJob, cfg.Sync.ArchiveInterval)
	return nil
}
