package memory

import (
	"context"
	"sort"
	"sync"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// HoldingStore is an in-memory implementation of storage.HoldingStore.
type HoldingStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Holding // user_id -> symbol -> holding
}

// NewHoldingStore creates a new in-memory holding store.
func NewHoldingStore() *HoldingStore {
	return &HoldingStore{
		data: make(map[string]map[string]*domain.Holding),
	}
}

// Insert adds a new holding. Returns ErrDuplicateKey if (user_id, symbol) exists.
func (s *HoldingStore) Insert(_ context.Context, h *domain.Holding) error {
	if h == nil || h.UserID == "" || h.Symbol == "" || h.Quantity < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byUser, ok := s.data[h.UserID]
	if !ok {
		byUser = make(map[string]*domain.Holding)
		s.data[h.UserID] = byUser
	}
	if _, exists := byUser[h.Symbol]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *h
	byUser[h.Symbol] = &copy
	return nil
}

// GetByUser retrieves all holdings of a user, ordered by symbol ASC.
func (s *HoldingStore) GetByUser(_ context.Context, userID string) ([]*domain.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Holding, 0, len(s.data[userID]))
	for _, h := range s.data[userID] {
		copy := *h
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})

	return result, nil
}

// ListUsers returns the distinct users that hold anything, ordered ASC.
func (s *HoldingStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.data))
	for userID, byUser := range s.data {
		if len(byUser) > 0 {
			users = append(users, userID)
		}
	}
	sort.Strings(users)

	return users, nil
}

var _ storage.HoldingStore = (*HoldingStore)(nil)
