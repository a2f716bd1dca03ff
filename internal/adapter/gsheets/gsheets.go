// Package gsheets implements a backend persisting records in a Google Sheets
// tab, one row per measurement with the header in row 1.
package gsheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"bulktracker/internal/domain"
)

// Backend reads and writes one sheet of a spreadsheet.
type Backend struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

var _ domain.Backend = (*Backend)(nil)

// New creates a backend authenticated with a service-account credentials
// file. The sheet must already exist; the header row is written on the first
// full write.
func New(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*Backend, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &Backend{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// ReadAll fetches the used range of the sheet. An empty sheet is an empty
// store; a wrong header row is ErrMalformedSchema.
func (b *Backend) ReadAll(ctx context.Context) ([]domain.Row, error) {
	resp, err := b.svc.Spreadsheets.Values.Get(b.spreadsheetID, b.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	if !headerOK(resp.Values[0]) {
		return nil, fmt.Errorf("%w: header row %v", domain.ErrMalformedSchema, resp.Values[0])
	}

	rows := make([]domain.Row, 0, len(resp.Values)-1)
	for _, cells := range resp.Values[1:] {
		rows = append(rows, domain.Row{
			Date:   cell(cells, 0),
			Weight: cell(cells, 1),
			SMM:    cell(cells, 2),
		})
	}
	return rows, nil
}

// WriteAll clears the sheet and writes header plus rows in one update.
func (b *Backend) WriteAll(ctx context.Context, rows []domain.Row) error {
	_, err := b.svc.Spreadsheets.Values.Clear(b.spreadsheetID, b.sheetName, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: clear: %v", domain.ErrStoreUnavailable, err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(domain.Header))
	for i, col := range domain.Header {
		header[i] = col
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, []interface{}{r.Date, r.Weight, r.SMM})
	}

	_, err = b.svc.Spreadsheets.Values.
		Update(b.spreadsheetID, b.sheetName, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: update: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Append adds one row after the used range. An empty sheet gets the header
// seeded first so subsequent reads pass the schema check.
func (b *Backend) Append(ctx context.Context, row domain.Row) error {
	head, err := b.svc.Spreadsheets.Values.Get(b.spreadsheetID, b.sheetName+"!A1:C1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(head.Values) == 0 {
		return b.WriteAll(ctx, []domain.Row{row})
	}

	_, err = b.svc.Spreadsheets.Values.
		Append(b.spreadsheetID, b.sheetName, &sheets.ValueRange{
			Values: [][]interface{}{{row.Date, row.Weight, row.SMM}},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: append: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func headerOK(cells []interface{}) bool {
	if len(cells) < len(domain.Header) {
		return false
	}
	for i, col := range domain.Header {
		if cell(cells, i) != col {
			return false
		}
	}
	return true
}

func cell(cells []interface{}, i int) string {
	if i >= len(cells) {
		return ""
	}
	return fmt.Sprint(cells[i])
}
