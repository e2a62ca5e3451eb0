package postgres

import (
	"context"
	"fmt"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// HoldingStore implements storage.HoldingStore using PostgreSQL.
type HoldingStore struct {
	pool *Pool
}

// NewHoldingStore creates a new HoldingStore.
func NewHoldingStore(pool *Pool) *HoldingStore {
	return &HoldingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HoldingStore = (*HoldingStore)(nil)

// Insert adds a new holding. Returns ErrDuplicateKey if (user_id, symbol) exists.
func (s *HoldingStore) Insert(ctx context.Context, h *domain.Holding) (err error) {
	defer func(start time.Time) { observe("insert_holding", start, err) }(time.Now())

	if h == nil || h.UserID == "" || h.Symbol == "" || h.Quantity < 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO holdings (user_id, symbol, quantity, avg_price)
		VALUES ($1, $2, $3, $4)
	`

	_, err = s.pool.Exec(ctx, query, h.UserID, h.Symbol, h.Quantity, h.AvgPrice)
	if err != nil {
		return translate("insert holding", err)
	}
	return nil
}

// GetByUser retrieves all holdings of a user, ordered by symbol ASC.
func (s *HoldingStore) GetByUser(ctx context.Context, userID string) (_ []*domain.Holding, err error) {
	defer func(start time.Time) { observe("get_holdings", start, err) }(time.Now())

	query := `
		SELECT user_id, symbol, quantity, avg_price
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get holdings by user: %w", err)
	}
	defer rows.Close()

	result := []*domain.Holding{}
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.UserID, &h.Symbol, &h.Quantity, &h.AvgPrice); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		result = append(result, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holdings: %w", err)
	}
	return result, nil
}

// ListUsers returns the distinct users that hold anything, ordered ASC.
func (s *HoldingStore) ListUsers(ctx context.Context) (_ []string, err error) {
	defer func(start time.Time) { observe("list_users", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT user_id FROM holdings ORDER BY user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
