package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory RowStore for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	rows [][]any
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ RowStore = (*MemoryStore)(nil)

func (s *MemoryStore) Ensure(ctx context.Context) error { return nil }

func (s *MemoryStore) ReadAll(ctx context.Context) ([][]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]any, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]any(nil), row...)
	}
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, append([]any(nil), row...))
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, idx int, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.rows) {
		return fmt.Errorf("no row at index %d", idx)
	}
	s.rows[idx] = append([]any(nil), row...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.rows) {
		return fmt.Errorf("no row at index %d", idx)
	}
	s.rows = append(s.rows[:idx], s.rows[idx+1:]...)
	return nil
}

// Len reports the current data row count.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
