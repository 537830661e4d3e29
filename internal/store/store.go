// Package store holds the tabular row store behind the watering log: the
// RowStore port, the Google Sheets adapter production runs on, a PostgreSQL
// adapter for self-hosted deployments, and an in-memory adapter for tests.
package store

import (
	"context"
	"fmt"
	"log"

	"gardentracker/internal/dateutil"
)

// NotFound is the sentinel row index returned when no row matches a date key.
const NotFound = -1

// RowStore is the port to the backing table. Rows are positional values in
// the fixed 5-column layout; indices are 0-based over data rows, header
// excluded. Implementations keep rows in append order.
type RowStore interface {
	// Ensure opens the backing table, creating it with the header row when
	// absent. Idempotent; safe to call on every request.
	Ensure(ctx context.Context) error
	// ReadAll returns all data rows in storage order.
	ReadAll(ctx context.Context) ([][]any, error)
	Append(ctx context.Context, row []any) error
	Update(ctx context.Context, idx int, row []any) error
	Delete(ctx context.Context, idx int) error
}

// UnavailableError reports a backing table that cannot be opened. It carries
// the configured identifier and the underlying cause; the request fails, no
// automatic retry.
type UnavailableError struct {
	ID  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store %q unavailable: %v", e.ID, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// FindRow scans data rows top to bottom and returns the index of the first
// row whose normalized date cell equals the given canonical date, or
// NotFound. Rows with unparseable date cells are skipped and logged; they can
// never match a valid key.
func FindRow(ctx context.Context, s RowStore, date dateutil.Date) (int, error) {
	rows, err := s.ReadAll(ctx)
	if err != nil {
		return NotFound, err
	}
	key := date.String()
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		d, err := dateutil.FromCell(row[0])
		if err != nil {
			log.Printf("store: skipping row %d while matching %s: %v", i+2, key, err)
			continue
		}
		if d.String() == key {
			return i, nil
		}
	}
	return NotFound, nil
}
