package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bulktracker/internal/domain"
	"bulktracker/internal/metrics"
)

// RecordService owns the canonical measurement set. It keeps at most one
// cached snapshot of the backend, discards it after every successful write,
// and re-reads before the next read is served, so the in-memory view never
// goes stale relative to the store.
type RecordService struct {
	backend domain.Backend
	policy  domain.CoercePolicy
	metrics *metrics.Collector

	mu    sync.Mutex
	cache []domain.Measurement
	valid bool
}

// NewRecordService creates a RecordService on the given backend. policy
// applies to bulk-replace input; mc may be nil.
func NewRecordService(backend domain.Backend, policy domain.CoercePolicy, mc *metrics.Collector) *RecordService {
	return &RecordService{backend: backend, policy: policy, metrics: mc}
}

// Load returns the current measurement set, sorted by date. A missing backend
// file or unusable schema degrades to an empty set so callers always have
// something to render; a backend that cannot be reached is an error and
// leaves any previously cached snapshot intact.
func (s *RecordService) Load(ctx context.Context) ([]domain.Measurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *RecordService) loadLocked(ctx context.Context) ([]domain.Measurement, error) {
	if !s.valid {
		rows, err := s.backend.ReadAll(ctx)
		if err != nil && !errors.Is(err, domain.ErrMalformedSchema) {
			s.metrics.ObserveStoreOp("load", err)
			return nil, err
		}
		// Malformed content reads as "no data yet".
		ms, _ := domain.ParseRows(rows, domain.DropInvalid)
		s.metrics.ObserveStoreOp("load", nil)
		s.cache, s.valid = ms, true
	}

	out := make([]domain.Measurement, len(s.cache))
	copy(out, s.cache)
	return out, nil
}

// Upsert inserts or replaces the measurement for its date and writes the
// result back synchronously. Replacement is whole-record, last write wins.
func (s *RecordService) Upsert(ctx context.Context, m domain.Measurement) error {
	if _, err := m.Day(); err != nil {
		return fmt.Errorf("date must be %s", domain.DayFormat)
	}
	if m.Weight <= 0 {
		return errors.New("weight must be > 0")
	}
	if m.SMM < 0 {
		return errors.New("smm must be >= 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range current {
		if current[i].Date == m.Date {
			current[i] = m
			replaced = true
			break
		}
	}

	if replaced {
		err = s.backend.WriteAll(ctx, domain.RowsOf(current))
	} else {
		err = s.backend.Append(ctx, m.Row())
	}
	s.metrics.ObserveStoreOp("upsert", err)
	if err != nil {
		return err
	}

	s.invalidateLocked()
	return nil
}

// ReplaceAll discards the persisted set and writes the given rows verbatim,
// after parsing them under the configured coercion policy. The write is
// all-or-nothing: on failure the previous content, and the cached snapshot,
// stay authoritative.
func (s *RecordService) ReplaceAll(ctx context.Context, rows []domain.Row) error {
	ms, err := domain.ParseRows(rows, s.policy)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.backend.WriteAll(ctx, domain.RowsOf(ms))
	s.metrics.ObserveStoreOp("replace_all", err)
	if err != nil {
		return err
	}

	s.invalidateLocked()
	return nil
}

func (s *RecordService) invalidateLocked() {
	s.cache, s.valid = nil, false
}
