// Package file implements a CSV-file backend.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bulktracker/internal/domain"
	"bulktracker/internal/rowcsv"
)

// Backend persists rows to a single CSV file on the local filesystem.
type Backend struct {
	path string
}

var _ domain.Backend = (*Backend)(nil)

// New creates a backend writing to the given path. The file is created on
// first write.
func New(path string) *Backend {
	return &Backend{path: path}
}

// ReadAll reads the whole file. A missing file is an empty store, not an
// error; unreadable files report ErrStoreUnavailable.
func (b *Backend) ReadAll(ctx context.Context) ([]domain.Row, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return rowcsv.Decode(data)
}

// WriteAll overwrites the file atomically: the new content is written to a
// temp file in the same directory and renamed over the old one, so an
// interrupted write never leaves a half-written store.
func (b *Backend) WriteAll(ctx context.Context, rows []domain.Row) error {
	data, err := rowcsv.Encode(rows)
	if err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Append adds one row via read-modify-write. A file with an unusable schema
// is started over with just the new row, matching the store's degrade-to-
// empty read behaviour.
func (b *Backend) Append(ctx context.Context, row domain.Row) error {
	rows, err := b.ReadAll(ctx)
	if err != nil && !errors.Is(err, domain.ErrMalformedSchema) {
		return err
	}
	return b.WriteAll(ctx, append(rows, row))
}
