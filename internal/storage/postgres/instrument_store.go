package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// InstrumentStore implements storage.InstrumentStore using PostgreSQL.
type InstrumentStore struct {
	pool *Pool
}

// NewInstrumentStore creates a new InstrumentStore.
func NewInstrumentStore(pool *Pool) *InstrumentStore {
	return &InstrumentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InstrumentStore = (*InstrumentStore)(nil)

// Insert adds a new instrument. Returns ErrDuplicateKey if symbol exists.
func (s *InstrumentStore) Insert(ctx context.Context, i *domain.Instrument) (err error) {
	defer func(start time.Time) { observe("insert_instrument", start, err) }(time.Now())

	query := `
		INSERT INTO instruments (symbol, name, dividend_yield)
		VALUES ($1, $2, $3)
	`

	_, err = s.pool.Exec(ctx, query, i.Symbol, i.Name, i.DividendYield)
	if err != nil {
		return translate("insert instrument", err)
	}
	return nil
}

// GetBySymbol retrieves an instrument. Returns ErrNotFound if not exists.
func (s *InstrumentStore) GetBySymbol(ctx context.Context, symbol string) (_ *domain.Instrument, err error) {
	defer func(start time.Time) { observe("get_instrument", start, err) }(time.Now())

	query := `
		SELECT symbol, name, dividend_yield
		FROM instruments
		WHERE symbol = $1
	`

	i, err := scanInstrument(s.pool.QueryRow(ctx, query, symbol))
	if err != nil {
		return nil, translate("get instrument by symbol", err)
	}
	return i, nil
}

// GetAll retrieves all instruments, ordered by symbol ASC.
func (s *InstrumentStore) GetAll(ctx context.Context) (_ []*domain.Instrument, err error) {
	defer func(start time.Time) { observe("list_instruments", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT symbol, name, dividend_yield
		FROM instruments
		ORDER BY symbol ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("get all instruments: %w", err)
	}
	defer rows.Close()

	var result []*domain.Instrument
	for rows.Next() {
		i, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instruments: %w", err)
	}
	return result, nil
}

func scanInstrument(row pgx.Row) (*domain.Instrument, error) {
	var i domain.Instrument
	if err := row.Scan(&i.Symbol, &i.Name, &i.DividendYield); err != nil {
		return nil, err
	}
	return &i, nil
}
