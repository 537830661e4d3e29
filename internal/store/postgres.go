package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the watering log in a single table for deployments that
// run their own database instead of a spreadsheet. The serial id preserves
// append order so positional access matches the sheet semantics.
type PostgresStore struct {
	db *pgxpool.Pool

	mu      sync.Mutex
	ensured bool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ RowStore = (*PostgresStore)(nil)

const createWateringRecords = `
CREATE TABLE IF NOT EXISTS watering_records (
    id        BIGSERIAL PRIMARY KEY,
    date      TEXT NOT NULL,
    gardener  TEXT NOT NULL DEFAULT '',
    watered   BOOLEAN NOT NULL DEFAULT FALSE,
    notes     TEXT NOT NULL DEFAULT '',
    ts        TEXT NOT NULL DEFAULT ''
)`

// Ensure creates the table when missing. Memoized per process.
func (s *PostgresStore) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}
	if err := s.db.Ping(ctx); err != nil {
		return &UnavailableError{ID: "watering_records", Err: err}
	}
	if _, err := s.db.Exec(ctx, createWateringRecords); err != nil {
		return &UnavailableError{ID: "watering_records", Err: err}
	}
	s.ensured = true
	return nil
}

// ReadAll returns all rows in insertion order as positional values.
func (s *PostgresStore) ReadAll(ctx context.Context) ([][]any, error) {
	rows, err := s.db.Query(ctx, `SELECT date, gardener, watered, notes, ts FROM watering_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	defer rows.Close()

	var all [][]any
	for rows.Next() {
		var date, gardener, notes, ts string
		var watered bool
		if err := rows.Scan(&date, &gardener, &watered, &notes, &ts); err != nil {
			return nil, err
		}
		all = append(all, []any{date, gardener, watered, notes, ts})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *PostgresStore) Append(ctx context.Context, row []any) error {
	if len(row) != 5 {
		return fmt.Errorf("expected 5 row values, got %d", len(row))
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO watering_records (date, gardener, watered, notes, ts) VALUES ($1, $2, $3, $4, $5)`,
		row[0], row[1], row[2], row[3], row[4])
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, idx int, row []any) error {
	if len(row) != 5 {
		return fmt.Errorf("expected 5 row values, got %d", len(row))
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE watering_records SET date = $1, gardener = $2, watered = $3, notes = $4, ts = $5
		 WHERE id = (SELECT id FROM watering_records ORDER BY id OFFSET $6 LIMIT 1)`,
		row[0], row[1], row[2], row[3], row[4], idx)
	if err != nil {
		return fmt.Errorf("failed to update row %d: %w", idx, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no row at index %d", idx)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, idx int) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM watering_records
		 WHERE id = (SELECT id FROM watering_records ORDER BY id OFFSET $1 LIMIT 1)`,
		idx)
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", idx, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no row at index %d", idx)
	}
	return nil
}
