// Package ingestion loads reference data, holdings, prices and inflation
// rows from CSV files into storage.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/inflation"
	"robo-advisor-lab/internal/observability"
	"robo-advisor-lab/internal/storage"
)

// Manager writes parsed rows to storage.
// Stores are append-only: rows whose key already exists are skipped, not updated.
type Manager struct {
	instrumentStore storage.InstrumentStore
	holdingStore    storage.HoldingStore
	priceStore      storage.PriceStore
	inflationStore  storage.InflationStore
}

// ManagerOptions contains configuration for creating a Manager.
// A nil store disables the matching import.
type ManagerOptions struct {
	InstrumentStore storage.InstrumentStore
	HoldingStore    storage.HoldingStore
	PriceStore      storage.PriceStore
	InflationStore  storage.InflationStore
}

// NewManager creates a new ingestion manager.
func NewManager(opts ManagerOptions) *Manager {
	return &Manager{
		instrumentStore: opts.InstrumentStore,
		holdingStore:    opts.HoldingStore,
		priceStore:      opts.PriceStore,
		inflationStore:  opts.InflationStore,
	}
}

// Result counts rows written and rows skipped as duplicates.
type Result struct {
	Inserted int
	Skipped  int
}

// ImportInstruments reads instruments CSV from r and stores new symbols.
func (m *Manager) ImportInstruments(ctx context.Context, r io.Reader) (Result, error) {
	if m.instrumentStore == nil {
		return Result{}, nil
	}
	rows, err := ReadInstruments(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, inst := range rows {
		err := m.instrumentStore.Insert(ctx, inst)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("insert instrument %s: %w", inst.Symbol, err)
		default:
			res.Inserted++
		}
	}
	observability.RecordRowsImported("instruments", res.Inserted)
	return res, nil
}

// ImportHoldings reads holdings CSV from r and stores new (user, symbol) positions.
func (m *Manager) ImportHoldings(ctx context.Context, r io.Reader) (Result, error) {
	if m.holdingStore == nil {
		return Result{}, nil
	}
	rows, err := ReadHoldings(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, h := range rows {
		err := m.holdingStore.Insert(ctx, h)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("insert holding %s/%s: %w", h.UserID, h.Symbol, err)
		default:
			res.Inserted++
		}
	}
	observability.RecordRowsImported("holdings", res.Inserted)
	return res, nil
}

// ImportPrices reads prices CSV from r and stores it one symbol per batch.
// Rows are sorted by (symbol, date) first; a repeated key inside the file is
// an error. A symbol batch that collides with stored rows is skipped whole.
func (m *Manager) ImportPrices(ctx context.Context, r io.Reader) (Result, error) {
	if m.priceStore == nil {
		return Result{}, nil
	}
	rows, err := ReadPrices(r)
	if err != nil {
		return Result{}, err
	}

	// Enforce deterministic ordering
	SortPrices(rows)
	if err := ValidatePriceOrdering(rows); err != nil {
		return Result{}, fmt.Errorf("prices: %w", err)
	}

	var res Result
	for _, batch := range GroupBySymbol(rows) {
		err := m.priceStore.InsertBulk(ctx, batch)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			res.Skipped += len(batch)
		case err != nil:
			return res, fmt.Errorf("insert prices for %s: %w", batch[0].Symbol, err)
		default:
			res.Inserted += len(batch)
		}
	}
	observability.RecordRowsImported("prices", res.Inserted)
	return res, nil
}

// ImportInflation reads inflation CSV from r and stores it in one batch.
func (m *Manager) ImportInflation(ctx context.Context, r io.Reader) (Result, error) {
	if m.inflationStore == nil {
		return Result{}, nil
	}
	rows, err := ReadInflation(r)
	if err != nil {
		return Result{}, err
	}
	SortInflation(rows)
	return m.storeInflation(ctx, rows)
}

// SeedInflation stores the mock generator's monthly rates for [from, to].
func (m *Manager) SeedInflation(ctx context.Context, from, to time.Time) (Result, error) {
	if m.inflationStore == nil {
		return Result{}, nil
	}
	generated := inflation.Generate(from, to)
	rows := make([]*domain.InflationPoint, len(generated))
	for i := range generated {
		rows[i] = &generated[i]
	}
	return m.storeInflation(ctx, rows)
}

func (m *Manager) storeInflation(ctx context.Context, rows []*domain.InflationPoint) (Result, error) {
	if len(rows) == 0 {
		return Result{}, nil
	}
	err := m.inflationStore.InsertBulk(ctx, rows)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return Result{Skipped: len(rows)}, nil
	case err != nil:
		return Result{}, fmt.Errorf("insert inflation: %w", err)
	}
	observability.RecordRowsImported("inflation", len(rows))
	return Result{Inserted: len(rows)}, nil
}
