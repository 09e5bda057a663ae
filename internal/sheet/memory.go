package sheet

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local dry runs. It
// mirrors the backend's behavior of dropping trailing empty cells only in
// that short rows read back exactly as written.
type MemoryStore struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string][][]string)}
}

// Seed replaces a sheet's contents wholesale.
func (m *MemoryStore) Seed(sheet string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	m.sheets[sheet] = copied
}

func (m *MemoryStore) ReadAll(_ context.Context, sheet string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.sheets[sheet]
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (m *MemoryStore) UpdateCell(_ context.Context, sheet string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCell(sheet, row, col, value)
	return nil
}

func (m *MemoryStore) BatchUpdateCells(_ context.Context, updates []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		m.setCell(u.Sheet, u.Row, u.Col, u.Value)
	}
	return nil
}

func (m *MemoryStore) WriteRows(_ context.Context, sheet string, startRow int, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range rows {
		for col, value := range row {
			m.setCell(sheet, startRow+i, col+1, value)
		}
	}
	return nil
}

func (m *MemoryStore) AppendRows(_ context.Context, sheet string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.sheets[sheet] = append(m.sheets[sheet], append([]string(nil), row...))
	}
	return nil
}

func (m *MemoryStore) ClearRows(_ context.Context, sheet string, fromRow, toRow int) error {
	if toRow < fromRow {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.sheets[sheet]
	for row := fromRow; row <= toRow && row <= len(rows); row++ {
		for col := range rows[row-1] {
			rows[row-1][col] = ""
		}
	}
	return nil
}

// Cell reads one cell for test assertions, returning "" when out of range.
func (m *MemoryStore) Cell(sheet string, row, col int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.sheets[sheet]
	if row-1 >= len(rows) || col-1 >= len(rows[row-1]) {
		return ""
	}
	return rows[row-1][col-1]
}

// RowCount returns the number of stored rows, header included.
func (m *MemoryStore) RowCount(sheet string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sheets[sheet])
}

func (m *MemoryStore) setCell(sheet string, row, col int, value string) {
	if row < 1 || col < 1 {
		panic(fmt.Sprintf("cell coordinates are 1-based, got row=%d col=%d", row, col))
	}
	rows := m.sheets[sheet]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = value
	m.sheets[sheet] = rows
}
