// Package memory implements an in-memory backend for development and testing.
package memory

import (
	"context"
	"sync"

	"bulktracker/internal/domain"
)

// Backend holds rows in memory. Contents are lost on process exit.
type Backend struct {
	mu   sync.Mutex
	rows []domain.Row
}

// Ensure the interface is met.
var _ domain.Backend = (*Backend)(nil)

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{}
}

// ReadAll returns a copy of the stored rows.
func (b *Backend) ReadAll(ctx context.Context) ([]domain.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Row, len(b.rows))
	copy(out, b.rows)
	return out, nil
}

// WriteAll replaces the stored rows with a copy of the given ones.
func (b *Backend) WriteAll(ctx context.Context, rows []domain.Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rows = make([]domain.Row, len(rows))
	copy(b.rows, rows)
	return nil
}

// Append adds one row.
func (b *Backend) Append(ctx context.Context, row domain.Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rows = append(b.rows, row)
	return nil
}
