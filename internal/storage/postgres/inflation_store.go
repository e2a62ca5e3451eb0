package postgres

import (
	"context"
	"fmt"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// InflationStore implements storage.InflationStore using PostgreSQL.
type InflationStore struct {
	pool *Pool
}

// NewInflationStore creates a new InflationStore.
func NewInflationStore(pool *Pool) *InflationStore {
	return &InflationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InflationStore = (*InflationStore)(nil)

// InsertBulk adds multiple points atomically. Fails entire batch on duplicate month.
func (s *InflationStore) InsertBulk(ctx context.Context, points []*domain.InflationPoint) (err error) {
	if len(points) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("insert_inflation", start, err) }(time.Now())

	for _, p := range points {
		if p == nil || p.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO inflation (month, rate_pct) VALUES ($1, $2)`
	for _, p := range points {
		if _, err := tx.Exec(ctx, query, domain.Day(p.Date), p.RatePct); err != nil {
			return translate("insert inflation in bulk", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByDateRange retrieves points within [from, to] (inclusive), ordered by date ASC.
func (s *InflationStore) GetByDateRange(ctx context.Context, from, to time.Time) (_ []*domain.InflationPoint, err error) {
	defer func(start time.Time) { observe("get_inflation", start, err) }(time.Now())

	query := `
		SELECT month, rate_pct
		FROM inflation
		WHERE month >= $1 AND month <= $2
		ORDER BY month ASC
	`

	rows, err := s.pool.Query(ctx, query, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("get inflation by date range: %w", err)
	}
	defer rows.Close()

	var result []*domain.InflationPoint
	for rows.Next() {
		var p domain.InflationPoint
		if err := rows.Scan(&p.Date, &p.RatePct); err != nil {
			return nil, fmt.Errorf("scan inflation row: %w", err)
		}
		p.Date = domain.Day(p.Date)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inflation rows: %w", err)
	}
	return result, nil
}
