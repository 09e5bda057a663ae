package sheet

import (
	"reflect"
	"testing"
)

func sampleRow() OrderRow {
	return OrderRow{
		Checkbox:      "FALSE",
		State:         StateNew,
		CountryCode:   "DE",
		CurrencyCode:  "EUR",
		TotalPaid:     "499.00",
		VATRate:       "19",
		KitID:         "",
		Grade:         "A 2",
		KeyboardFlag:  "",
		BatteryFlag:   "TRUE",
		Warehouse:     "",
		ErpOrderID:    "",
		SKU:           "MBP-14-2021",
		ItemName:      "MacBook Pro 14 | 16GB | 512GB SSD | QWERTZ",
		CustomerEmail: "buyer@example.com",
		FirstName:     "Ada",
		FamilyName:    "Lovelace",
		PhoneNumber:   "+49123456",
		MarketplaceID: "339071",
	}
}

func TestCellsRoundTrip(t *testing.T) {
	row := sampleRow()
	cells := row.Cells()
	if len(cells) != OrderColumnCount {
		t.Fatalf("expected %d cells, got %d", OrderColumnCount, len(cells))
	}
	parsed := OrderRowFromCells(cells)
	if !reflect.DeepEqual(row, parsed) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", row, parsed)
	}
}

func TestColumnPositionsAreStable(t *testing.T) {
	row := sampleRow()
	cells := row.Cells()
	if cells[ColCheckbox-1] != "FALSE" {
		t.Fatalf("checkbox not in column %d", ColCheckbox)
	}
	if cells[ColState-1] != StateNew {
		t.Fatalf("state not in column %d", ColState)
	}
	if cells[ColErpOrderID-1] != "" {
		t.Fatalf("erp id not in column %d", ColErpOrderID)
	}
	if cells[ColMarketplaceID-1] != "339071" {
		t.Fatalf("marketplace id not in column %d", ColMarketplaceID)
	}
}

func TestOrderRowFromCellsPadsShortRows(t *testing.T) {
	row := OrderRowFromCells([]string{"TRUE", StateNew, "PL"})
	if !row.Checked() {
		t.Fatalf("expected checked row")
	}
	if row.MarketplaceID != "" {
		t.Fatalf("missing trailing cells should parse as empty")
	}
}

func TestIsEmpty(t *testing.T) {
	var blank OrderRow
	if !blank.IsEmpty() {
		t.Fatalf("zero row should be empty")
	}
	padded := OrderRowFromCells([]string{" ", "", "  "})
	if !padded.IsEmpty() {
		t.Fatalf("whitespace-only row should be empty")
	}
	row := OrderRow{MarketplaceID: "1"}
	if row.IsEmpty() {
		t.Fatalf("row with an id is not empty")
	}
}

func TestCheckedIsCaseInsensitive(t *testing.T) {
	for _, value := range []string{"TRUE", "true", " True "} {
		row := OrderRow{Checkbox: value}
		if !row.Checked() {
			t.Fatalf("%q should count as checked", value)
		}
	}
	row := OrderRow{Checkbox: "FALSE"}
	if row.Checked() {
		t.Fatalf("FALSE must not count as checked")
	}
}

func TestParseOrderRowsDropsHeader(t *testing.T) {
	table := [][]string{
		{"checkbox", "state"},
		{"TRUE", StateNew},
		{"FALSE", StateAccepted},
	}
	rows := ParseOrderRows(table)
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	if rows[0].State != StateNew || rows[1].State != StateAccepted {
		t.Fatalf("rows parsed out of order: %+v", rows)
	}
	if got := DataRowToSheetRow(1); got != 2 {
		t.Fatalf("first data row should live at sheet row 2, got %d", got)
	}
}
