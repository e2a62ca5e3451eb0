package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// PriceStore implements storage.PriceStore using ClickHouse.
type PriceStore struct {
	conn *Conn
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(conn *Conn) *PriceStore {
	return &PriceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (symbol, date).
// MergeTree does not enforce uniqueness, so duplicates are checked before sending.
func (s *PriceStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) (err error) {
	if len(points) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("insert_prices", start, err) }(time.Now())

	type key struct {
		symbol string
		date   time.Time
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Symbol == "" || p.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{p.Symbol, domain.Day(p.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for k := range seen {
		exists, err := s.exists(ctx, k.symbol, k.date)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO prices (symbol, date, close, dividend)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.Symbol, domain.Day(p.Date), p.Close, p.Dividend); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all points for a symbol, ordered by date ASC.
func (s *PriceStore) GetBySymbol(ctx context.Context, symbol string) (_ []*domain.PricePoint, err error) {
	defer func(start time.Time) { observe("get_prices", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, `
		SELECT symbol, date, close, dividend
		FROM prices
		WHERE symbol = ?
		ORDER BY date ASC
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

// GetByDateRange retrieves points for a symbol within [from, to] (inclusive), ordered by date ASC.
func (s *PriceStore) GetByDateRange(ctx context.Context, symbol string, from, to time.Time) (_ []*domain.PricePoint, err error) {
	defer func(start time.Time) { observe("get_prices_range", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, `
		SELECT symbol, date, close, dividend
		FROM prices
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

// GetLatest retrieves the most recent point for a symbol. Returns ErrNotFound if none.
func (s *PriceStore) GetLatest(ctx context.Context, symbol string) (_ *domain.PricePoint, err error) {
	defer func(start time.Time) { observe("get_latest_price", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, `
		SELECT symbol, date, close, dividend
		FROM prices
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT 1
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query latest price: %w", err)
	}
	defer rows.Close()

	points, err := scanPrices(rows)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}
	return points[0], nil
}

// GetTrailingDividends sums dividends per unit paid by symbol within [from, to] (inclusive).
func (s *PriceStore) GetTrailingDividends(ctx context.Context, symbol string, from, to time.Time) (_ float64, err error) {
	defer func(start time.Time) { observe("sum_dividends", start, err) }(time.Now())

	var total float64
	err = s.conn.QueryRow(ctx, `
		SELECT sum(dividend)
		FROM prices
		WHERE symbol = ? AND date >= ? AND date <= ?
	`, symbol, domain.Day(from), domain.Day(to)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum trailing dividends: %w", err)
	}
	return total, nil
}

func (s *PriceStore) exists(ctx context.Context, symbol string, date time.Time) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count(*) FROM prices
		WHERE symbol = ? AND date = ?
	`, symbol, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanPrices(rows driver.Rows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Close, &p.Dividend); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		p.Date = domain.Day(p.Date)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}

	return points, nil
}
