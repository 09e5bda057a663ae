package sheet

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vedion/refurbed-sync/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "sheet-test", Level: zerolog.Disabled})
}

func seededArchiver(t *testing.T, store *MemoryStore) *Archiver {
	t.Helper()
	archiver, err := NewArchiver(ArchiverParams{
		Store:        store,
		Logger:       newTestLogger(),
		OrdersSheet:  "Orders",
		ArchiveSheet: "Archive",
	})
	if err != nil {
		t.Fatalf("building archiver: %v", err)
	}
	return archiver
}

func orderCells(state, marketplaceID string) []string {
	row := OrderRow{Checkbox: "FALSE", State: state, MarketplaceID: marketplaceID}
	return row.Cells()
}

func TestArchiveMovesTerminalRows(t *testing.T) {
	store := NewMemoryStore()
	store.Seed("Orders", [][]string{
		make([]string, OrderColumnCount), // header
		orderCells(StateShipped, "1"),
		orderCells(StateNew, "2"),
		orderCells(StateCancelled, "3"),
		orderCells(StateAccepted, "4"),
	})

	archiver := seededArchiver(t, store)
	moved, err := archiver.Archive(context.Background())
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if moved != 2 {
		t.Fatalf("expected 2 rows archived, got %d", moved)
	}

	if got := store.RowCount("Archive"); got != 2 {
		t.Fatalf("expected 2 archive rows, got %d", got)
	}
	if got := store.Cell("Archive", 1, ColMarketplaceID); got != "1" {
		t.Fatalf("expected shipped order first in archive, got %q", got)
	}

	// Survivors are compacted to the top of the working sheet.
	if got := store.Cell("Orders", 2, ColMarketplaceID); got != "2" {
		t.Fatalf("expected order 2 at first data row, got %q", got)
	}
	if got := store.Cell("Orders", 3, ColMarketplaceID); got != "4" {
		t.Fatalf("expected order 4 at second data row, got %q", got)
	}
	if got := store.Cell("Orders", 4, ColMarketplaceID); got != "" {
		t.Fatalf("stale rows should be cleared, got %q", got)
	}
}

func TestArchiveNoTerminalRowsIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	store.Seed("Orders", [][]string{
		make([]string, OrderColumnCount),
		orderCells(StateNew, "1"),
	})

	archiver := seededArchiver(t, store)
	moved, err := archiver.Archive(context.Background())
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if moved != 0 {
		t.Fatalf("expected no-op, got %d", moved)
	}
	if got := store.RowCount("Archive"); got != 0 {
		t.Fatalf("archive sheet should stay empty, got %d rows", got)
	}
	if got := store.Cell("Orders", 2, ColMarketplaceID); got != "1" {
		t.Fatalf("working sheet must be untouched, got %q", got)
	}
}

func TestNewArchiverValidatesParams(t *testing.T) {
	if _, err := NewArchiver(ArchiverParams{Logger: newTestLogger(), OrdersSheet: "O", ArchiveSheet: "A"}); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := NewArchiver(ArchiverParams{Store: NewMemoryStore(), OrdersSheet: "O", ArchiveSheet: "A"}); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewArchiver(ArchiverParams{Store: NewMemoryStore(), Logger: newTestLogger()}); err == nil {
		t.Fatalf("expected error without sheet names")
	}
}
