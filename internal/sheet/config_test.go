package sheet

import (
	"reflect"
	"testing"
)

func configTable() [][]string {
	return [][]string{
		{"cursor", "", "", "marketplace_id", "erp_id"},
		{"339000", "", "", "111", "501"},
		{"", "", "", "", ""},
		{"", "", "", "222", "502"},
		{"", "", "", "", ""},
	}
}

func TestCursorFrom(t *testing.T) {
	if got := CursorFrom(configTable()); got != "339000" {
		t.Fatalf("expected cursor 339000, got %q", got)
	}
	if got := CursorFrom(nil); got != "" {
		t.Fatalf("empty table should yield empty cursor, got %q", got)
	}
}

func TestPairsFromSkipsEmptySlots(t *testing.T) {
	pairs := PairsFrom(configTable())
	want := []Pair{
		{Row: 2, MarketplaceID: "111", ErpOrderID: "501"},
		{Row: 4, MarketplaceID: "222", ErpOrderID: "502"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Fatalf("unexpected pairs:\nwant %+v\ngot  %+v", want, pairs)
	}
}

func TestHasPair(t *testing.T) {
	table := configTable()
	if !HasPair(table, "111") {
		t.Fatalf("111 is paired")
	}
	if HasPair(table, "999") {
		t.Fatalf("999 is not paired")
	}
}

func TestFreeSlotsPrefersExistingRows(t *testing.T) {
	slots := FreeSlots(configTable(), 5)
	if !reflect.DeepEqual(slots, []int{3, 5}) {
		t.Fatalf("expected slots [3 5], got %v", slots)
	}

	if slots := FreeSlots(configTable(), 1); !reflect.DeepEqual(slots, []int{3}) {
		t.Fatalf("needed=1 should stop at the first slot, got %v", slots)
	}

	full := [][]string{
		{"cursor", "", "", "", ""},
		{"", "", "", "111", "501"},
	}
	if slots := FreeSlots(full, 2); slots != nil {
		t.Fatalf("no free slots expected, got %v", slots)
	}
}

func TestPairRowCells(t *testing.T) {
	cells := PairRowCells("999", "555")
	if len(cells) != ConfigErpIDCol {
		t.Fatalf("expected %d cells, got %d", ConfigErpIDCol, len(cells))
	}
	if cells[ConfigMarketplaceIDCol-1] != "999" || cells[ConfigErpIDCol-1] != "555" {
		t.Fatalf("pair landed in wrong columns: %v", cells)
	}
}
