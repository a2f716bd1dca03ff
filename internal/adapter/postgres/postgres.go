// Package postgres implements a PostgreSQL backend.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"bulktracker/internal/domain"
)

// Backend stores one measurement row per day in a measurements table.
type Backend struct {
	sql *sql.DB
}

var _ domain.Backend = (*Backend)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*Backend, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	b := &Backend{sql: s}
	if err := b.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return b, nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.sql.Close()
}

func (b *Backend) migrate(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS measurements (
		day TEXT PRIMARY KEY,
		weight DOUBLE PRECISION NOT NULL,
		smm DOUBLE PRECISION NOT NULL
	);`
	if _, err := b.sql.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ReadAll returns every row ordered by day.
func (b *Backend) ReadAll(ctx context.Context) ([]domain.Row, error) {
	rows, err := b.sql.QueryContext(ctx, "SELECT day, weight, smm FROM measurements ORDER BY day;")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var (
			day         string
			weight, smm float64
		)
		if err := rows.Scan(&day, &weight, &smm); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		out = append(out, domain.Row{
			Date:   day,
			Weight: strconv.FormatFloat(weight, 'f', -1, 64),
			SMM:    strconv.FormatFloat(smm, 'f', -1, 64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return out, nil
}

// WriteAll replaces the table contents in a single transaction, so an
// interrupted replace never leaves a partial store.
func (b *Backend) WriteAll(ctx context.Context, rows []domain.Row) error {
	tx, err := b.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM measurements;"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO measurements(day, weight, smm) VALUES($1, $2, $3);",
			r.Date, numeric(r.Weight), numeric(r.SMM),
		); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Append inserts one row; the primary key makes a same-day insert an update,
// which keeps the date-uniqueness invariant even if the store's existence
// check raced an out-of-band write.
func (b *Backend) Append(ctx context.Context, row domain.Row) error {
	_, err := b.sql.ExecContext(ctx,
		`INSERT INTO measurements(day, weight, smm) VALUES($1, $2, $3)
		 ON CONFLICT (day) DO UPDATE SET weight = EXCLUDED.weight, smm = EXCLUDED.smm;`,
		row.Date, numeric(row.Weight), numeric(row.SMM),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// numeric coerces a cell to a float column value; unparseable cells become 0,
// the same fallback the tabular backends apply at parse time.
func numeric(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
