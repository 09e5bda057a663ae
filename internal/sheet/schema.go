// Package sheet models the spreadsheet that staff and the sync worker share
// as the system of record for marketplace orders.
package sheet

import "strings"

// Marketplace lifecycle states mirrored into the state column.
const (
	StateNew       = "NEW"
	StateAccepted  = "ACCEPTED"
	StateShipped   = "SHIPPED"
	StateCancelled = "CANCELLED"
	StateReturned  = "RETURNED"
)

// HeaderRows is the number of header rows before the first data row on both
// the orders and config sheets.
const HeaderRows = 1

// OrderRow is one order item as staff see it. The sheet stores these
// positionally; orderColumns below is the only place that ordering lives.
type OrderRow struct {
	Checkbox      string
	State         string
	CountryCode   string
	CurrencyCode  string
	TotalPaid     string
	VATRate       string
	KitID         string
	Grade         string
	KeyboardFlag  string
	BatteryFlag   string
	Warehouse     string
	ErpOrderID    string
	SKU           string
	ItemName      string
	CustomerEmail string
	FirstName     string
	FamilyName    string
	PhoneNumber   string
	MarketplaceID string
}

// orderColumns binds every OrderRow field to its sheet position. Column
// numbers are 1-based to match how ranges are addressed everywhere else.
var orderColumns = []struct {
	col   int
	field func(*OrderRow) *string
}{
	{1, func(r *OrderRow) *string { return &r.Checkbox }},
	{2, func(r *OrderRow) *string { return &r.State }},
	{3, func(r *OrderRow) *string { return &r.CountryCode }},
	{4, func(r *OrderRow) *string { return &r.CurrencyCode }},
	{5, func(r *OrderRow) *string { return &r.TotalPaid }},
	{6, func(r *OrderRow) *string { return &r.VATRate }},
	{7, func(r *OrderRow) *string { return &r.KitID }},
	{8, func(r *OrderRow) *string { return &r.Grade }},
	{9, func(r *OrderRow) *string { return &r.KeyboardFlag }},
	{10, func(r *OrderRow) *string { return &r.BatteryFlag }},
	{11, func(r *OrderRow) *string { return &r.Warehouse }},
	{12, func(r *OrderRow) *string { return &r.ErpOrderID }},
	{13, func(r *OrderRow) *string { return &r.SKU }},
	{14, func(r *OrderRow) *string { return &r.ItemName }},
	{15, func(r *OrderRow) *string { return &r.CustomerEmail }},
	{16, func(r *OrderRow) *string { return &r.FirstName }},
	{17, func(r *OrderRow) *string { return &r.FamilyName }},
	{18, func(r *OrderRow) *string { return &r.PhoneNumber }},
	{19, func(r *OrderRow) *string { return &r.MarketplaceID }},
}

// OrderColumnCount is the width of the orders sheet.
const OrderColumnCount = 19

// Columns that the engines address individually.
const (
	ColCheckbox      = 1
	ColState         = 2
	ColErpOrderID    = 12
	ColMarketplaceID = 19
)

// Cells renders the row in positional wire order.
func (r *OrderRow) Cells() []string {
	cells := make([]string, OrderColumnCount)
	for _, c := range orderColumns {
		cells[c.col-1] = *c.field(r)
	}
	return cells
}

// OrderRowFromCells parses one positional row; short rows are padded so
// trailing blank cells dropped by the backend do not matter.
func OrderRowFromCells(cells []string) OrderRow {
	var row OrderRow
	for _, c := range orderColumns {
		if c.col-1 < len(cells) {
			*c.field(&row) = cells[c.col-1]
		}
	}
	return row
}

// IsEmpty reports a structurally empty row, which terminates scans under the
// contiguous-from-the-top assumption.
func (r *OrderRow) IsEmpty() bool {
	for _, c := range orderColumns {
		if strings.TrimSpace(*c.field(r)) != "" {
			return false
		}
	}
	return true
}

// Checked reports whether the operator ticked the row for ERP push.
func (r *OrderRow) Checked() bool {
	return strings.EqualFold(strings.TrimSpace(r.Checkbox), "TRUE")
}

// ParseOrderRows converts a whole-table read into typed rows, dropping the
// header. Row numbering context is up to the caller: data row i (0-based)
// lives at sheet row i+HeaderRows+1.
func ParseOrderRows(table [][]string) []OrderRow {
	if len(table) <= HeaderRows {
		return nil
	}
	rows := make([]OrderRow, 0, len(table)-HeaderRows)
	for _, cells := range table[HeaderRows:] {
		rows = append(rows, OrderRowFromCells(cells))
	}
	return rows
}

// DataRowToSheetRow converts a 1-based data row index to its absolute sheet
// row.
func DataRowToSheetRow(dataRow int) int {
	return dataRow + HeaderRows
}
