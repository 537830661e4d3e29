package store

import (
	"context"
	"fmt"
	"log"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"gardentracker/internal/types/record"
)

// SheetsStore keeps the watering log in a single tab of a Google spreadsheet,
// one data row per calendar date under a bold 5-column header.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string

	mu      sync.Mutex
	ensured bool
	sheetID int64
}

// NewSheetsStore builds a SheetsStore for the given spreadsheet identifier.
func NewSheetsStore(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

var _ RowStore = (*SheetsStore)(nil)

// Ensure opens the spreadsheet and creates the records sheet with its header
// when missing. The result is memoized per process; repeating it is safe.
func (s *SheetsStore) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return &UnavailableError{ID: s.spreadsheetID, Err: err}
	}

	for _, sh := range ss.Sheets {
		if sh.Properties.Title == s.sheetName {
			s.sheetID = sh.Properties.SheetId
			// The sheet may have been created by an earlier run that died
			// before the header landed; repair it before memoizing.
			if err := s.ensureHeader(ctx); err != nil {
				return err
			}
			s.ensured = true
			return nil
		}
	}

	log.Printf("sheets: sheet %q not found, creating it", s.sheetName)
	resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return &UnavailableError{ID: s.spreadsheetID, Err: fmt.Errorf("failed to create sheet %q: %w", s.sheetName, err)}
	}
	s.sheetID = resp.Replies[0].AddSheet.Properties.SheetId

	if err := s.writeHeader(ctx); err != nil {
		return err
	}

	s.ensured = true
	return nil
}

// ensureHeader writes the header when the first row is empty.
func (s *SheetsStore) ensureHeader(ctx context.Context) error {
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rowRange(0)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}
	if len(vr.Values) > 0 && len(vr.Values[0]) > 0 {
		return nil
	}
	return s.writeHeader(ctx)
}

// writeHeader writes the fixed column header and makes it bold.
func (s *SheetsStore) writeHeader(ctx context.Context) error {
	header := &sheets.ValueRange{Values: [][]any{record.Header}}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rowRange(0), header).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          s.sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   record.Columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat.bold",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to format header row: %w", err)
	}
	return nil
}

// ReadAll returns every data row below the header in sheet order.
func (s *SheetsStore) ReadAll(ctx context.Context) ([][]any, error) {
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return vr.Values, nil
}

func (s *SheetsStore) Append(ctx context.Context, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.dataRange(), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (s *SheetsStore) Update(ctx context.Context, idx int, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rowRange(idx+1), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update row %d: %w", idx, err)
	}
	return nil
}

func (s *SheetsStore) Delete(ctx context.Context, idx int) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(idx + 1),
					EndIndex:   int64(idx + 2),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", idx, err)
	}
	return nil
}

// rowRange addresses one whole sheet row; 0 is the header.
func (s *SheetsStore) rowRange(sheetRow int) string {
	return fmt.Sprintf("'%s'!A%d:E%d", s.sheetName, sheetRow+1, sheetRow+1)
}

func (s *SheetsStore) dataRange() string {
	return fmt.Sprintf("'%s'!A2:E", s.sheetName)
}
