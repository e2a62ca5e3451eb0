package memory

import (
	"context"
	"sort"
	"sync"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// InstrumentStore is an in-memory implementation of storage.InstrumentStore.
type InstrumentStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Instrument // keyed by symbol
}

// NewInstrumentStore creates a new in-memory instrument store.
func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{
		data: make(map[string]*domain.Instrument),
	}
}

// Insert adds a new instrument. Returns ErrDuplicateKey if symbol exists.
func (s *InstrumentStore) Insert(_ context.Context, i *domain.Instrument) error {
	if i == nil || i.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[i.Symbol]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[i.Symbol] = copyInstrument(i)
	return nil
}

// GetBySymbol retrieves an instrument. Returns ErrNotFound if not exists.
func (s *InstrumentStore) GetBySymbol(_ context.Context, symbol string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, exists := s.data[symbol]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyInstrument(i), nil
}

// GetAll retrieves all instruments, ordered by symbol ASC.
func (s *InstrumentStore) GetAll(_ context.Context) ([]*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Instrument, 0, len(s.data))
	for _, i := range s.data {
		result = append(result, copyInstrument(i))
	}

	sort.Slice(result, func(a, b int) bool {
		return result[a].Symbol < result[b].Symbol
	})

	return result, nil
}

func copyInstrument(i *domain.Instrument) *domain.Instrument {
	c := *i
	if i.DividendYield != nil {
		y := *i.DividendYield
		c.DividendYield = &y
	}
	return &c
}

var _ storage.InstrumentStore = (*InstrumentStore)(nil)
