package sheet

import (
	"context"
	"fmt"

	"github.com/vedion/refurbed-sync/pkg/logger"
	"github.com/vedion/refurbed-sync/pkg/metrics"
)

// ArchiverParams configure the archive pass.
type ArchiverParams struct {
	Store        Store
	Logger       *logger.Logger
	Metrics      *metrics.FlowMetrics
	OrdersSheet  string
	ArchiveSheet string
}

// Archiver moves terminal rows off the working sheet so the pending scan
// stays bounded.
type Archiver struct {
	store        Store
	logg         *logger.Logger
	metrics      *metrics.FlowMetrics
	ordersSheet  string
	archiveSheet string
}

func NewArchiver(params ArchiverParams) (*Archiver, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.OrdersSheet == "" || params.ArchiveSheet == "" {
		return nil, fmt.Errorf("orders and archive sheet names required")
	}
	return &Archiver{
		store:        params.Store,
		logg:         params.Logger,
		metrics:      params.Metrics,
		ordersSheet:  params.OrdersSheet,
		archiveSheet: params.ArchiveSheet,
	}, nil
}

// Archive appends SHIPPED and CANCELLED rows to the archive sheet and
// rewrites the working sheet with the remainder. Returns how many rows
// moved.
func (a *Archiver) Archive(ctx context.Context) (int, error) {
	table, err := a.store.ReadAll(ctx, a.ordersSheet)
	if err != nil {
		return 0, fmt.Errorf("reading orders sheet: %w", err)
	}
	rows := ParseOrderRows(table)

	var terminal, keep [][]string
	for i := range rows {
		row := &rows[i]
		if row.IsEmpty() {
			continue
		}
		if row.State == StateShipped || row.State == StateCancelled {
			terminal = append(terminal, row.Cells())
		} else {
			keep = append(keep, row.Cells())
		}
	}
	if len(terminal) == 0 {
		return 0, nil
	}

	if err := a.store.AppendRows(ctx, a.archiveSheet, terminal); err != nil {
		return 0, fmt.Errorf("appending to archive sheet: %w", err)
	}
	if err := a.store.ClearRows(ctx, a.ordersSheet, HeaderRows+1, len(table)); err != nil {
		return 0, fmt.Errorf("clearing orders sheet: %w", err)
	}
	if err := a.store.WriteRows(ctx, a.ordersSheet, HeaderRows+1, keep); err != nil {
		return 0, fmt.Errorf("rewriting orders sheet: %w", err)
	}

	a.metrics.AddRowsArchived(len(terminal))
	a.logg.Info(a.logg.WithField(ctx, "archived_rows", len(terminal)), "archived terminal rows")
	return len(terminal), nil
}
