package sheet

import "context"

// CellUpdate addresses one cell mutation. Row and Col are 1-based absolute
// sheet coordinates.
type CellUpdate struct {
	Sheet string
	Row   int
	Col   int
	Value string
}

// Store is the row/cell surface the engines run against. Implementations
// are the Google Sheets backend and an in-memory fake for tests.
type Store interface {
	// ReadAll returns the whole table including header rows. Trailing
	// empty cells may be absent from each row.
	ReadAll(ctx context.Context, sheet string) ([][]string, error)
	// UpdateCell writes a single cell.
	UpdateCell(ctx context.Context, sheet string, row, col int, value string) error
	// BatchUpdateCells applies every update in one round trip where the
	// backend supports it.
	BatchUpdateCells(ctx context.Context, updates []CellUpdate) error
	// WriteRows overwrites a rectangular block starting at startRow.
	WriteRows(ctx context.Context, sheet string, startRow int, rows [][]string) error
	// AppendRows adds rows after the last occupied row.
	AppendRows(ctx context.Context, sheet string, rows [][]string) error
	// ClearRows blanks rows fromRow through toRow inclusive.
	ClearRows(ctx context.Context, sheet string, fromRow, toRow int) error
}
