package sheet

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/vedion/refurbed-sync/pkg/config"
)

const rawInput = "RAW"

var errSpreadsheetIDRequired = errors.New("spreadsheet id is required")

// GoogleStore implements Store against the Google Sheets API.
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewGoogleStore builds a Sheets-backed store using whichever credential
// source the config carries.
func NewGoogleStore(ctx context.Context, gcp config.GCPConfig, spreadsheetID string) (*GoogleStore, error) {
	if spreadsheetID == "" {
		return nil, errSpreadsheetIDRequired
	}

	opts := clientOptions(gcp)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &GoogleStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if gcp.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	} else if gcp.ApplicationCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

func (s *GoogleStore) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	table := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		table = append(table, cells)
	}
	return table, nil
}

func (s *GoogleStore) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	rangeA1 := cellRange(sheet, row, col)
	vr := &sheets.ValueRange{Values: [][]any{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeA1, vr).
		ValueInputOption(rawInput).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", rangeA1, err)
	}
	return nil
}

func (s *GoogleStore) BatchUpdateCells(ctx context.Context, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  cellRange(u.Sheet, u.Row, u.Col),
			Values: [][]any{{u.Value}},
		})
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: rawInput, Data: data}
	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch updating %d cells: %w", len(updates), err)
	}
	return nil
}

func (s *GoogleStore) WriteRows(ctx context.Context, sheet string, startRow int, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	rangeA1 := fmt.Sprintf("%s!A%d", sheet, startRow)
	vr := &sheets.ValueRange{Values: toInterfaceRows(rows)}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeA1, vr).
		ValueInputOption(rawInput).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing rows at %s: %w", rangeA1, err)
	}
	return nil
}

func (s *GoogleStore) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: toInterfaceRows(rows)}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, sheet, vr).
		ValueInputOption(rawInput).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %d rows to %s: %w", len(rows), sheet, err)
	}
	return nil
}

func (s *GoogleStore) ClearRows(ctx context.Context, sheet string, fromRow, toRow int) error {
	if toRow < fromRow {
		return nil
	}
	rangeA1 := fmt.Sprintf("%s!A%d:%s%d", sheet, fromRow, columnLetter(OrderColumnCount), toRow)
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rangeA1, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing %s: %w", rangeA1, err)
	}
	return nil
}

func cellRange(sheet string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", sheet, columnLetter(col), row)
}

func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

func toInterfaceRows(rows [][]string) [][]any {
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		out = append(out, cells)
	}
	return out
}
