package sheet

// PendingRows returns the 1-based data-row indices eligible for ERP push:
// operator checkbox ticked and state still NEW. Scanning stops at the first
// structurally empty row since rows are contiguous from the top.
func PendingRows(rows []OrderRow) []int {
	var pending []int
	for i := range rows {
		row := &rows[i]
		if row.IsEmpty() {
			break
		}
		if row.Checked() && row.State == StateNew {
			pending = append(pending, i+1)
		}
	}
	return pending
}

// MarketplaceIDsInTail collects the marketplace ids present in the last n
// data rows, the window the missing-order recovery scan compares against.
func MarketplaceIDsInTail(rows []OrderRow, n int) map[string]struct{} {
	start := 0
	if len(rows) > n {
		start = len(rows) - n
	}
	ids := make(map[string]struct{})
	for _, row := range rows[start:] {
		if row.MarketplaceID != "" {
			ids[row.MarketplaceID] = struct{}{}
		}
	}
	return ids
}
