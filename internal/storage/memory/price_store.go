package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// PriceStore is an in-memory implementation of storage.PriceStore.
type PriceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by (symbol, date)
}

// NewPriceStore creates a new in-memory price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{
		data: make(map[string]*domain.PricePoint),
	}
}

// priceKey generates a unique key for a price point.
func priceKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s|%s", symbol, date.Format(domain.DateLayout))
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *PriceStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range points {
		if p == nil || p.Symbol == "" {
			return storage.ErrInvalidInput
		}
		key := priceKey(p.Symbol, p.Date)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		pointCopy := *p
		pointCopy.Date = domain.Day(p.Date)
		s.data[priceKey(p.Symbol, p.Date)] = &pointCopy
	}

	return nil
}

// GetBySymbol retrieves all points for a symbol, ordered by date ASC.
func (s *PriceStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.PricePoint, error) {
	return s.filter(func(p *domain.PricePoint) bool {
		return p.Symbol == symbol
	}), nil
}

// GetByDateRange retrieves points for a symbol within [from, to] (inclusive).
func (s *PriceStore) GetByDateRange(_ context.Context, symbol string, from, to time.Time) ([]*domain.PricePoint, error) {
	from, to = domain.Day(from), domain.Day(to)
	return s.filter(func(p *domain.PricePoint) bool {
		return p.Symbol == symbol && !p.Date.Before(from) && !p.Date.After(to)
	}), nil
}

// GetLatest retrieves the most recent point for a symbol.
func (s *PriceStore) GetLatest(ctx context.Context, symbol string) (*domain.PricePoint, error) {
	points, _ := s.GetBySymbol(ctx, symbol)
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}
	return points[len(points)-1], nil
}

// GetTrailingDividends sums dividends paid by symbol within [from, to] (inclusive).
func (s *PriceStore) GetTrailingDividends(ctx context.Context, symbol string, from, to time.Time) (float64, error) {
	points, _ := s.GetByDateRange(ctx, symbol, from, to)
	total := 0.0
	for _, p := range points {
		total += p.Dividend
	}
	return total, nil
}

func (s *PriceStore) filter(keep func(p *domain.PricePoint) bool) []*domain.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if keep(p) {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result
}

var _ storage.PriceStore = (*PriceStore)(nil)
