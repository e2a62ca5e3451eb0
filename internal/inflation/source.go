// Package inflation supplies monthly inflation rates and deflates value series.
package inflation

import (
	"context"
	"fmt"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// Source returns monthly inflation points for a date range.
// Implementations must be deterministic for a given range.
type Source interface {
	InflationSeries(ctx context.Context, from, to time.Time) ([]domain.InflationPoint, error)
}

// StoreSource serves stored CPI-derived rows and falls back to another source
// when the store holds nothing for the range.
type StoreSource struct {
	store    storage.InflationStore
	fallback Source
}

// NewStoreSource creates a StoreSource. fallback may be nil.
func NewStoreSource(store storage.InflationStore, fallback Source) *StoreSource {
	return &StoreSource{store: store, fallback: fallback}
}

// InflationSeries implements Source.
func (s *StoreSource) InflationSeries(ctx context.Context, from, to time.Time) ([]domain.InflationPoint, error) {
	rows, err := s.store.GetByDateRange(ctx, domain.FirstOfMonth(from), to)
	if err != nil {
		return nil, fmt.Errorf("load inflation rows: %w", err)
	}
	if len(rows) > 0 || s.fallback == nil {
		out := make([]domain.InflationPoint, len(rows))
		for i, r := range rows {
			out[i] = *r
		}
		return out, nil
	}
	return s.fallback.InflationSeries(ctx, from, to)
}

var _ Source = (*StoreSource)(nil)
