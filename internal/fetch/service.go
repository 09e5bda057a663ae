package fetch

import (
	"context"
	"fmt"

	"github.com/vedion/refurbed-sync/internal/refurbed"
	"github.com/vedion/refurbed-sync/internal/sheet"
	"github.com/vedion/refurbed-sync/pkg/logger"
	"github.com/vedion/refurbed-sync/pkg/metrics"
)

// recoveryWindow is how many trailing sheet rows the missing-order scan
// compares against. It matches the marketplace page limit so one latest
// fetch covers the whole window.
const recoveryWindow = 100

// Marketplace is the slice of the marketplace client this engine consumes.
type Marketplace interface {
	ListSince(ctx context.Context, cursor string, limit int) ([]refurbed.Order, error)
	ListLatest(ctx context.Context, n int) ([]refurbed.Order, error)
	ListByIDs(ctx context.Context, ids []string) ([]refurbed.Order, error)
}

// ServiceParams configure the fetch engine.
type ServiceParams struct {
	Store       sheet.Store
	Marketplace Marketplace
	Logger      *logger.Logger
	Metrics     *metrics.FlowMetrics
	OrdersSheet string
	ConfigSheet string
	PageLimit   int
}

// Service orchestrates incremental, latest-N, selected-id and recovery
// fetches against the spreadsheet.
type Service struct {
	store       sheet.Store
	marketplace Marketplace
	logg        *logger.Logger
	metrics     *metrics.FlowMetrics
	ordersSheet string
	configSheet string
	pageLimit   int
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if params.Marketplace == nil {
		return nil, fmt.Errorf("marketplace client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.OrdersSheet == "" || params.ConfigSheet == "" {
		return nil, fmt.Errorf("orders and config sheet names required")
	}
	pageLimit := params.PageLimit
	if pageLimit <= 0 || pageLimit > refurbed.MaxPageSize {
		pageLimit = refurbed.MaxPageSize
	}
	return &Service{
		store:       params.Store,
		marketplace: params.Marketplace,
		logg:        params.Logger,
		metrics:     params.Metrics,
		ordersSheet: params.OrdersSheet,
		configSheet: params.ConfigSheet,
		pageLimit:   pageLimit,
	}, nil
}

// Incremental fetches orders past the stored cursor, appends their rows and
// advances the cursor to the last mapped id. Zero new orders is a clean
// no-op. The cursor only moves after the rows are written, so a failed
// append is retried by the next pass rather than skipped.
func (s *Service) Incremental(ctx context.Context) (int, error) {
	configTable, err := s.store.ReadAll(ctx, s.configSheet)
	if err != nil {
		return 0, fmt.Errorf("reading config sheet: %w", err)
	}
	cursor := sheet.CursorFrom(configTable)

	orders, err := s.marketplace.ListSince(ctx, cursor, s.pageLimit)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}
	s.metrics.AddOrdersFetched("incremental", len(orders))

	rows, lastID := s.mapOrders(ctx, orders)
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.store.AppendRows(ctx, s.ordersSheet, rows); err != nil {
		return 0, fmt.Errorf("appending order rows: %w", err)
	}
	s.metrics.AddRowsAppended(len(rows))

	if err := s.store.UpdateCell(ctx, s.configSheet, sheet.ConfigCursorRow, sheet.ConfigCursorCol, lastID); err != nil {
		return len(rows), fmt.Errorf("advancing cursor to %s: %w", lastID, err)
	}
	return len(rows), nil
}

// Latest returns the newest n orders without touching the sheet or the
// cursor. Used for spot checks.
func (s *Service) Latest(ctx context.Context, n int) ([]refurbed.Order, error) {
	orders, err := s.marketplace.ListLatest(ctx, n)
	if err != nil {
		return nil, err
	}
	s.metrics.AddOrdersFetched("latest", len(orders))
	return orders, nil
}

// Selected returns full detail for an explicit id set.
func (s *Service) Selected(ctx context.Context, ids []string) ([]refurbed.Order, error) {
	orders, err := s.marketplace.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.metrics.AddOrdersFetched("selected", len(orders))
	return orders, nil
}

// RecoverMissing scans the latest orders for ids the sheet never received.
// The incremental cursor is a single scalar, so an order that settles late
// arrives with an id below the cursor and is skipped forever; this pass
// appends such orders unless they already reached a terminal state. The
// cursor is deliberately left alone.
func (s *Service) RecoverMissing(ctx context.Context) (int, error) {
	orders, err := s.marketplace.ListLatest(ctx, s.pageLimit)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	table, err := s.store.ReadAll(ctx, s.ordersSheet)
	if err != nil {
		return 0, fmt.Errorf("reading orders sheet: %w", err)
	}
	known := sheet.MarketplaceIDsInTail(sheet.ParseOrderRows(table), recoveryWindow)

	var missing []refurbed.Order
	for _, order := range orders {
		if _, ok := known[order.ID]; ok {
			continue
		}
		if order.State == refurbed.OrderStateShipped || order.State == refurbed.OrderStateCancelled {
			continue
		}
		missing = append(missing, order)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	// Latest fetches arrive newest first; reverse so the sheet stays
	// oldest-to-newest.
	for i, j := 0, len(missing)-1; i < j; i, j = i+1, j-1 {
		missing[i], missing[j] = missing[j], missing[i]
	}

	rows, _ := s.mapOrders(ctx, missing)
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.store.AppendRows(ctx, s.ordersSheet, rows); err != nil {
		return 0, fmt.Errorf("appending recovered rows: %w", err)
	}
	s.metrics.AddOrdersFetched("recovery", len(rows))
	s.metrics.AddRowsAppended(len(rows))
	s.logg.Info(s.logg.WithField(ctx, "recovered_orders", len(rows)), "recovered missing orders")
	return len(rows), nil
}

// RefreshStates re-reads the marketplace state of every order on the sheet
// and batches the state cells into one write per pass.
func (s *Service) RefreshStates(ctx context.Context) (int, error) {
	table, err := s.store.ReadAll(ctx, s.ordersSheet)
	if err != nil {
		return 0, fmt.Errorf("reading orders sheet: %w", err)
	}
	rows := sheet.ParseOrderRows(table)

	rowByID := make(map[string]int, len(rows))
	var ids []string
	for i := range rows {
		if id := rows[i].MarketplaceID; id != "" {
			rowByID[id] = sheet.DataRowToSheetRow(i + 1)
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var updates []sheet.CellUpdate
	for start := 0; start < len(ids); start += refurbed.MaxPageSize {
		end := start + refurbed.MaxPageSize
		if end > len(ids) {
			end = len(ids)
		}
		orders, err := s.marketplace.ListByIDs(ctx, ids[start:end])
		if err != nil {
			return 0, err
		}
		for _, order := range orders {
			row, ok := rowByID[order.ID]
			if !ok || order.State == "" {
				continue
			}
			updates = append(updates, sheet.CellUpdate{
				Sheet: s.ordersSheet,
				Row:   row,
				Col:   sheet.ColState,
				Value: order.State,
			})
		}
	}
	if len(updates) == 0 {
		return 0, nil
	}
	if err := s.store.BatchUpdateCells(ctx, updates); err != nil {
		return 0, fmt.Errorf("writing refreshed states: %w", err)
	}
	return len(updates), nil
}

// mapOrders converts fetched orders to rows, skipping orders that fail to
// map so one malformed order cannot sink the batch.
func (s *Service) mapOrders(ctx context.Context, orders []refurbed.Order) ([][]string, string) {
	var rows [][]string
	var lastID string
	for _, order := range orders {
		row, err := MapOrder(order)
		if err != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "skipping unmappable order", err)
			continue
		}
		rows = append(rows, row.Cells())
		lastID = order.ID
	}
	return rows, lastID
}
