package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

func TestHoldingStore_InsertAndGetByUser(t *testing.T) {
	pool := newTestPool(t)

	ctx := context.Background()
	store := NewHoldingStore(pool)

	require.NoError(t, store.Insert(ctx, &domain.Holding{UserID: "u1", Symbol: "STX40.JO", Quantity: 12.5, AvgPrice: 70}))
	require.NoError(t, store.Insert(ctx, &domain.Holding{UserID: "u1", Symbol: "GRT.JO", Quantity: 100}))
	require.NoError(t, store.Insert(ctx, &domain.Holding{UserID: "u2", Symbol: "STX40.JO", Quantity: 1}))

	holdings, err := store.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "GRT.JO", holdings[0].Symbol)
	assert.Equal(t, "STX40.JO", holdings[1].Symbol)
	assert.InDelta(t, 12.5, holdings[1].Quantity, 1e-12)
	assert.InDelta(t, 70, holdings[1].AvgPrice, 1e-12)

	none, err := store.GetByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestHoldingStore_Errors(t *testing.T) {
	pool := newTestPool(t)

	ctx := context.Background()
	store := NewHoldingStore(pool)

	require.NoError(t, store.Insert(ctx, &domain.Holding{UserID: "u1", Symbol: "NPN.JO", Quantity: 1}))
	err := store.Insert(ctx, &domain.Holding{UserID: "u1", Symbol: "NPN.JO", Quantity: 2})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.Insert(ctx, &domain.Holding{UserID: "u1", Symbol: "SOL.JO", Quantity: -1})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
