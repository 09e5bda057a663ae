// Package reconcile closes the loop between the ERP and the marketplace:
// it watches tracked orders for cancellation or completion and settles
// both sides.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/vedion/refurbed-sync/internal/idosell"
	"github.com/vedion/refurbed-sync/internal/refurbed"
	"github.com/vedion/refurbed-sync/internal/sheet"
	"github.com/vedion/refurbed-sync/pkg/logger"
	"github.com/vedion/refurbed-sync/pkg/metrics"
)

// Marketplace is the slice of the marketplace client the reconciler uses.
type Marketplace interface {
	ListByIDs(ctx context.Context, ids []string) ([]refurbed.Order, error)
	UpdateItemState(ctx context.Context, itemID, state, trackingURL string) error
}

// Erp is the slice of the ERP client the reconciler uses.
type Erp interface {
	GetOrderStatus(ctx context.Context, serial string) (idosell.OrderStatus, error)
}

// ServiceParams configure the reconciler.
type ServiceParams struct {
	Store       sheet.Store
	Marketplace Marketplace
	Erp         Erp
	Logger      *logger.Logger
	Metrics     *metrics.FlowMetrics
	OrdersSheet string
	ConfigSheet string
	RatePerSec  float64
}

// Service walks the tracked id pairs each pass and reacts to terminal ERP
// statuses.
type Service struct {
	store       sheet.Store
	marketplace Marketplace
	erp         Erp
	logg        *logger.Logger
	metrics     *metrics.FlowMetrics
	ordersSheet string
	configSheet string
	limiter     *rate.Limiter
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if params.Marketplace == nil {
		return nil, fmt.Errorf("marketplace client required")
	}
	if params.Erp == nil {
		return nil, fmt.Errorf("erp client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.OrdersSheet == "" || params.ConfigSheet == "" {
		return nil, fmt.Errorf("orders and config sheet names required")
	}
	ratePerSec := params.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	return &Service{
		store:       params.Store,
		marketplace: params.Marketplace,
		erp:         params.Erp,
		logg:        params.Logger,
		metrics:     params.Metrics,
		ordersSheet: params.OrdersSheet,
		configSheet: params.ConfigSheet,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}, nil
}

// Reconcile checks every tracked pair against the ERP. Cancelled orders are
// marked CANCELLED on the sheet; finished orders with a tracking number are
// reported SHIPPED to the marketplace with the carrier link and marked
// SHIPPED on the sheet. Either way the pair's slot is cleared so the next
// push can reuse it. Finished orders still waiting for a tracking number
// are left for the next pass. Sheet writes batch into one request.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	configTable, err := s.store.ReadAll(ctx, s.configSheet)
	if err != nil {
		return 0, fmt.Errorf("reading config sheet: %w", err)
	}
	pairs := sheet.PairsFrom(configTable)
	if len(pairs) == 0 {
		return 0, nil
	}

	ordersTable, err := s.store.ReadAll(ctx, s.ordersSheet)
	if err != nil {
		return 0, fmt.Errorf("reading orders sheet: %w", err)
	}
	rowByID := sheetRowsByMarketplaceID(sheet.ParseOrderRows(ordersTable))

	var updates []sheet.CellUpdate
	var errs error
	settled := 0
	for _, pair := range pairs {
		logctx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     pair.MarketplaceID,
			"erp_order_id": pair.ErpOrderID,
		})

		status, err := s.erp.GetOrderStatus(ctx, pair.ErpOrderID)
		if err != nil {
			s.logg.Error(logctx, "reading erp order status failed", err)
			errs = multierr.Append(errs, err)
			continue
		}

		switch {
		case status.Status == idosell.StatusCanceled:
			if row, ok := rowByID[pair.MarketplaceID]; ok {
				updates = append(updates, sheet.CellUpdate{
					Sheet: s.ordersSheet, Row: row, Col: sheet.ColState, Value: sheet.StateCancelled,
				})
			}
			updates = append(updates, clearSlot(s.configSheet, pair.Row)...)
			s.metrics.IncReconciled("cancelled")
			s.logg.Info(logctx, "erp order cancelled, releasing slot")
			settled++

		case status.Status == idosell.StatusFinished && status.TrackingID != "":
			if err := s.shipOrder(ctx, pair.MarketplaceID, status.TrackingID); err != nil {
				s.logg.Error(logctx, "reporting shipment failed", err)
				errs = multierr.Append(errs, err)
				continue
			}
			if row, ok := rowByID[pair.MarketplaceID]; ok {
				updates = append(updates, sheet.CellUpdate{
					Sheet: s.ordersSheet, Row: row, Col: sheet.ColState, Value: sheet.StateShipped,
				})
			}
			updates = append(updates, clearSlot(s.configSheet, pair.Row)...)
			s.metrics.IncReconciled("shipped")
			s.logg.Info(logctx, "erp order shipped, releasing slot")
			settled++

		case status.Status == idosell.StatusFinished:
			s.logg.Info(logctx, "erp order finished but not yet dispatched")
		}
	}

	if len(updates) > 0 {
		if err := s.store.BatchUpdateCells(ctx, updates); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("writing reconciliation results: %w", err))
		}
	}
	return settled, errs
}

// shipOrder marks every item of the marketplace order shipped with the
// carrier tracking link.
func (s *Service) shipOrder(ctx context.Context, marketplaceID, trackingID string) error {
	orders, err := s.marketplace.ListByIDs(ctx, []string{marketplaceID})
	if err != nil {
		return fmt.Errorf("fetching order %s: %w", marketplaceID, err)
	}
	if len(orders) == 0 {
		return fmt.Errorf("order %s not returned by the marketplace", marketplaceID)
	}

	url := refurbed.TrackingURL(trackingID)
	for _, item := range orders[0].Items {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := s.marketplace.UpdateItemState(ctx, item.ID, refurbed.ItemStateShipped, url); err != nil {
			return fmt.Errorf("marking item %s shipped: %w", item.ID, err)
		}
		s.metrics.IncItemsUpdated()
	}
	return nil
}

func clearSlot(configSheet string, row int) []sheet.CellUpdate {
	return []sheet.CellUpdate{
		{Sheet: configSheet, Row: row, Col: sheet.ConfigMarketplaceIDCol, Value: ""},
		{Sheet: configSheet, Row: row, Col: sheet.ConfigErpIDCol, Value: ""},
	}
}

func sheetRowsByMarketplaceID(rows []sheet.OrderRow) map[string]int {
	byID := make(map[string]int, len(rows))
	for i := range rows {
		if id := rows[i].MarketplaceID; id != "" {
			byID[id] = sheet.DataRowToSheetRow(i + 1)
		}
	}
	return byID
}
