package sheet

import "strings"

// Fixed coordinates on the config sheet. The cursor lives in a reserved
// cell; pairings occupy two adjacent columns from the first data row down.
// These positions are an on-sheet storage format shared with the operators'
// spreadsheet, so they must not move.
const (
	ConfigCursorRow = 2
	ConfigCursorCol = 1

	ConfigMarketplaceIDCol = 4
	ConfigErpIDCol         = 5
	ConfigFirstPairRow     = 2
)

// Pair is one tracked (marketplace id, ERP order id) association.
type Pair struct {
	Row           int // absolute sheet row
	MarketplaceID string
	ErpOrderID    string
}

func configCell(table [][]string, row, col int) string {
	if row-1 >= len(table) {
		return ""
	}
	cells := table[row-1]
	if col-1 >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col-1])
}

// CursorFrom reads the fetch cursor out of a whole-table config read.
func CursorFrom(table [][]string) string {
	return configCell(table, ConfigCursorRow, ConfigCursorCol)
}

// PairsFrom collects every occupied pairing slot.
func PairsFrom(table [][]string) []Pair {
	var pairs []Pair
	for row := ConfigFirstPairRow; row <= len(table); row++ {
		marketplaceID := configCell(table, row, ConfigMarketplaceIDCol)
		erpID := configCell(table, row, ConfigErpIDCol)
		if marketplaceID == "" && erpID == "" {
			continue
		}
		pairs = append(pairs, Pair{Row: row, MarketplaceID: marketplaceID, ErpOrderID: erpID})
	}
	return pairs
}

// HasPair reports whether a marketplace id is already paired, which is the
// idempotency check guarding against double order creation.
func HasPair(table [][]string, marketplaceID string) bool {
	for _, pair := range PairsFrom(table) {
		if pair.MarketplaceID == marketplaceID {
			return true
		}
	}
	return false
}

// FreeSlots returns up to needed sheet rows whose pairing columns are both
// empty. Existing slots are reused before callers append new rows, keeping
// the config table bounded.
func FreeSlots(table [][]string, needed int) []int {
	if needed <= 0 {
		return nil
	}
	var slots []int
	for row := ConfigFirstPairRow; row <= len(table); row++ {
		if configCell(table, row, ConfigMarketplaceIDCol) == "" && configCell(table, row, ConfigErpIDCol) == "" {
			slots = append(slots, row)
			if len(slots) == needed {
				break
			}
		}
	}
	return slots
}

// PairRowCells renders a pairing as a full config row for appends, padding
// the columns before the pairing slots.
func PairRowCells(marketplaceID, erpID string) []string {
	cells := make([]string, ConfigErpIDCol)
	cells[ConfigMarketplaceIDCol-1] = marketplaceID
	cells[ConfigErpIDCol-1] = erpID
	return cells
}
