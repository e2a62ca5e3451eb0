package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// InflationStore is an in-memory implementation of storage.InflationStore.
type InflationStore struct {
	mu   sync.RWMutex
	data map[time.Time]*domain.InflationPoint // keyed by date
}

// NewInflationStore creates a new in-memory inflation store.
func NewInflationStore() *InflationStore {
	return &InflationStore{
		data: make(map[time.Time]*domain.InflationPoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate date.
func (s *InflationStore) InsertBulk(_ context.Context, points []*domain.InflationPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[time.Time]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := domain.Day(p.Date)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		pointCopy.Date = domain.Day(p.Date)
		s.data[pointCopy.Date] = &pointCopy
	}

	return nil
}

// GetByDateRange retrieves points within [from, to] (inclusive), ordered by date ASC.
func (s *InflationStore) GetByDateRange(_ context.Context, from, to time.Time) ([]*domain.InflationPoint, error) {
	from, to = domain.Day(from), domain.Day(to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.InflationPoint
	for d, p := range s.data {
		if !d.Before(from) && !d.After(to) {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.InflationStore = (*InflationStore)(nil)
