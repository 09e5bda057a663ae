package cron

import (
	"context"
	"fmt"

	"github.com/vedion/refurbed-sync/pkg/logger"
)

// The scheduled jobs wrap one engine operation each. The engines own the
// pipeline logic; the wrappers only name the work and log its outcome.

type incrementalFetcher interface {
	Incremental(ctx context.Context) (int, error)
}

type missingOrderRecoverer interface {
	RecoverMissing(ctx context.Context) (int, error)
}

type stateRefresher interface {
	RefreshStates(ctx context.Context) (int, error)
}

type orderPusher interface {
	PushAll(ctx context.Context) (int, error)
}

type orderReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

type rowArchiver interface {
	Archive(ctx context.Context) (int, error)
}

type countedJob struct {
	name string
	logg *logger.Logger
	run  func(ctx context.Context) (int, error)
}

func (j *countedJob) Name() string { return j.name }

func (j *countedJob) Run(ctx context.Context) error {
	count, err := j.run(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "count", count), "job pass complete")
	return nil
}

func newCountedJob(name string, logg *logger.Logger, run func(ctx context.Context) (int, error)) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if run == nil {
		return nil, fmt.Errorf("%s service required", name)
	}
	return &countedJob{name: name, logg: logg, run: run}, nil
}

// NewFetchJob appends newly settled marketplace orders to the sheet.
func NewFetchJob(fetcher incrementalFetcher, logg *logger.Logger) (Job, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetch service required")
	}
	return newCountedJob("fetch-orders", logg, fetcher.Incremental)
}

// NewRecoveryJob appends orders the incremental cursor skipped.
func NewRecoveryJob(recoverer missingOrderRecoverer, logg *logger.Logger) (Job, error) {
	if recoverer == nil {
		return nil, fmt.Errorf("fetch service required")
	}
	return newCountedJob("recover-missing", logg, recoverer.RecoverMissing)
}

// NewStateRefreshJob mirrors marketplace order states onto the sheet.
func NewStateRefreshJob(refresher stateRefresher, logg *logger.Logger) (Job, error) {
	if refresher == nil {
		return nil, fmt.Errorf("fetch service required")
	}
	return newCountedJob("refresh-states", logg, refresher.RefreshStates)
}

// NewPushJob turns checked rows into ERP orders.
func NewPushJob(pusher orderPusher, logg *logger.Logger) (Job, error) {
	if pusher == nil {
		return nil, fmt.Errorf("push service required")
	}
	return newCountedJob("push-orders", logg, pusher.PushAll)
}

// NewReconcileJob settles cancelled and shipped ERP orders.
func NewReconcileJob(reconciler orderReconciler, logg *logger.Logger) (Job, error) {
	if reconciler == nil {
		return nil, fmt.Errorf("reconcile service required")
	}
	return newCountedJob("reconcile-orders", logg, reconciler.Reconcile)
}

// NewArchiveJob moves terminal rows off the working sheet.
func NewArchiveJob(archiver rowArchiver, logg *logger.Logger) (Job, error) {
	if archiver == nil {
		return nil, fmt.Errorf("archiver required")
	}
	return newCountedJob("archive-rows", logg, archiver.Archive)
}
