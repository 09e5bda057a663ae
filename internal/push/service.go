package push

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/vedion/refurbed-sync/internal/idosell"
	"github.com/vedion/refurbed-sync/internal/refurbed"
	"github.com/vedion/refurbed-sync/internal/sheet"
	"github.com/vedion/refurbed-sync/internal/vat"
	"github.com/vedion/refurbed-sync/pkg/errors"
	"github.com/vedion/refurbed-sync/pkg/logger"
	"github.com/vedion/refurbed-sync/pkg/metrics"
)

// Marketplace is the slice of the marketplace client the push engine uses.
type Marketplace interface {
	ListByIDs(ctx context.Context, ids []string) ([]refurbed.Order, error)
	UpdateItemState(ctx context.Context, itemID, state, trackingURL string) error
}

// Erp is the slice of the ERP client the push engine uses.
type Erp interface {
	CreateOrder(ctx context.Context, order idosell.Order) (string, error)
	EditOrder(ctx context.Context, serial, status, note string) error
	GetBundle(ctx context.Context, productID string) (idosell.Bundle, error)
	AddPayment(ctx context.Context, serial, value string) error
	ConfirmPayment(ctx context.Context, serial string) error
}

// ServiceParams configure the push engine.
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

// Service pushes checked spreadsheet rows into the ERP and confirms them
// back to the marketplace.
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

// pushResult ties a processed row back to the ERP order it produced.
type pushResult struct {
	dataRow       int
	marketplaceID string
	serial        string
	items         []refurbed.OrderItem
}

// PushAll processes every checked NEW row: it creates the matching ERP
// order, registers the advance payment, records the id pair on the config
// sheet, writes the ERP id and ACCEPTED state back to the row, and tells
// the marketplace each item was accepted. A row that fails is logged and
// skipped; the rest of the batch proceeds.
func (s *Service) PushAll(ctx context.Context) (int, error) {
	ordersTable, err := s.store.ReadAll(ctx, s.ordersSheet)
	if err != nil {
		return 0, fmt.Errorf("reading orders sheet: %w", err)
	}
	rows := sheet.ParseOrderRows(ordersTable)
	pending := sheet.PendingRows(rows)
	if len(pending) == 0 {
		return 0, nil
	}

	configTable, err := s.store.ReadAll(ctx, s.configSheet)
	if err != nil {
		return 0, fmt.Errorf("reading config sheet: %w", err)
	}

	candidates, errs := s.selectCandidates(ctx, rows, pending, configTable)
	if len(candidates) == 0 {
		return 0, errs
	}

	ids := make([]string, 0, len(candidates))
	for _, dataRow := range candidates {
		ids = append(ids, rows[dataRow-1].MarketplaceID)
	}
	details, err := s.marketplace.ListByIDs(ctx, ids)
	if err != nil {
		return 0, multierr.Append(errs, fmt.Errorf("fetching order details: %w", err))
	}
	detailByID := make(map[string]refurbed.Order, len(details))
	for _, order := range details {
		detailByID[order.ID] = order
	}

	var results []pushResult
	for _, dataRow := range candidates {
		row := rows[dataRow-1]
		logctx := s.logg.WithOrderID(ctx, row.MarketplaceID)

		detail, ok := detailByID[row.MarketplaceID]
		if !ok {
			err := errors.New(errors.CodeNotFound, fmt.Sprintf("order %s not returned by the marketplace", row.MarketplaceID))
			s.logg.Error(logctx, "skipping row without marketplace detail", err)
			errs = multierr.Append(errs, err)
			continue
		}

		serial, err := s.pushOne(ctx, row, detail)
		if err != nil {
			s.logg.Error(logctx, "pushing order failed", err)
			errs = multierr.Append(errs, err)
			continue
		}
		s.metrics.IncOrdersPushed()
		results = append(results, pushResult{
			dataRow:       dataRow,
			marketplaceID: row.MarketplaceID,
			serial:        serial,
			items:         detail.Items,
		})
	}
	if len(results) == 0 {
		return 0, errs
	}

	if err := s.recordResults(ctx, configTable, results); err != nil {
		errs = multierr.Append(errs, err)
	}
	s.propagateAccepted(ctx, results)
	return len(results), errs
}

// selectCandidates filters pending rows down to pushable ones: each needs an
// operator-assigned kit and warehouse, must not repeat a kit already used
// this batch, and must not already have an ERP order recorded on the config
// sheet. A checked row missing its operator columns is reported as an error
// so the pass does not silently leave it behind.
func (s *Service) selectCandidates(ctx context.Context, rows []sheet.OrderRow, pending []int, configTable [][]string) ([]int, error) {
	seenKits := make(map[string]struct{})
	var candidates []int
	var errs error
	for _, dataRow := range pending {
		row := rows[dataRow-1]
		logctx := s.logg.WithOrderID(ctx, row.MarketplaceID)

		if row.KitID == "" || row.Warehouse == "" {
			err := errors.New(errors.CodeValidation, fmt.Sprintf("order %s is checked but has no kit or warehouse assigned", row.MarketplaceID))
			s.logg.Warn(logctx, "checked row missing kit or warehouse")
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := seenKits[row.KitID]; dup {
			s.logg.Warn(logctx, "skipping row reusing a kit already pushed this pass")
			continue
		}
		if sheet.HasPair(configTable, row.MarketplaceID) {
			s.logg.Warn(logctx, "skipping order already recorded on the config sheet")
			continue
		}
		seenKits[row.KitID] = struct{}{}
		candidates = append(candidates, dataRow)
	}
	return candidates, errs
}

// pushOne runs the full ERP sequence for a single row and returns the new
// order's serial number. Once the ERP order exists, follow-up failures are
// logged but do not fail the row: the pair must still be recorded or the
// next pass would create the order twice.
func (s *Service) pushOne(ctx context.Context, row sheet.OrderRow, detail refurbed.Order) (string, error) {
	premium := row.VATRate == vat.SheetPremium

	bundle, err := s.erp.GetBundle(ctx, row.KitID)
	if err != nil {
		return "", fmt.Errorf("loading bundle for kit %s: %w", row.KitID, err)
	}

	order, err := BuildOrder(row, detail, bundle)
	if err != nil {
		return "", err
	}
	serial, err := s.erp.CreateOrder(ctx, order)
	if err != nil {
		return "", fmt.Errorf("creating erp order: %w", err)
	}

	logctx := s.logg.WithField(s.logg.WithOrderID(ctx, detail.ID), "erp_order_id", serial)

	status := idosell.StatusOnOrder
	if premium {
		status = idosell.StatusWaitForPackaging
	}
	if err := s.erp.EditOrder(ctx, serial, status, order.ClientNoteToOrder); err != nil {
		s.logg.Error(logctx, "setting erp order status failed", err)
	}
	if err := s.erp.AddPayment(ctx, serial, row.TotalPaid); err != nil {
		s.logg.Error(logctx, "adding advance payment failed", err)
	} else if err := s.erp.ConfirmPayment(ctx, serial); err != nil {
		s.logg.Error(logctx, "confirming advance payment failed", err)
	}
	return serial, nil
}

// recordResults writes the id pairs to the config sheet, preferring freed
// slots over appending, and marks the pushed rows ACCEPTED with their ERP
// order id.
func (s *Service) recordResults(ctx context.Context, configTable [][]string, results []pushResult) error {
	slots := sheet.FreeSlots(configTable, len(results))

	var updates []sheet.CellUpdate
	var appendRows [][]string
	for i, result := range results {
		if i < len(slots) {
			updates = append(updates,
				sheet.CellUpdate{Sheet: s.configSheet, Row: slots[i], Col: sheet.ConfigMarketplaceIDCol, Value: result.marketplaceID},
				sheet.CellUpdate{Sheet: s.configSheet, Row: slots[i], Col: sheet.ConfigErpIDCol, Value: result.serial},
			)
		} else {
			appendRows = append(appendRows, sheet.PairRowCells(result.marketplaceID, result.serial))
		}
		sheetRow := sheet.DataRowToSheetRow(result.dataRow)
		updates = append(updates,
			sheet.CellUpdate{Sheet: s.ordersSheet, Row: sheetRow, Col: sheet.ColErpOrderID, Value: result.serial},
			sheet.CellUpdate{Sheet: s.ordersSheet, Row: sheetRow, Col: sheet.ColState, Value: sheet.StateAccepted},
		)
	}

	var errs error
	if err := s.store.BatchUpdateCells(ctx, updates); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("writing push results: %w", err))
	}
	if len(appendRows) > 0 {
		if err := s.store.AppendRows(ctx, s.configSheet, appendRows); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("appending id pairs: %w", err))
		}
	}
	return errs
}

// propagateAccepted tells the marketplace every pushed item was accepted.
// The merchant API throttles state updates, so calls go through the token
// bucket. Failures are logged; the reconciler catches up later.
func (s *Service) propagateAccepted(ctx context.Context, results []pushResult) {
	for _, result := range results {
		logctx := s.logg.WithOrderID(ctx, result.marketplaceID)
		for _, item := range result.items {
			if err := s.limiter.Wait(ctx); err != nil {
				s.logg.Error(logctx, "rate limiter interrupted", err)
				return
			}
			if err := s.marketplace.UpdateItemState(ctx, item.ID, refurbed.ItemStateAccepted, ""); err != nil {
				s.logg.Error(logctx, "marking item accepted failed", err)
				continue
			}
			s.metrics.IncItemsUpdated()
		}
	}
}
