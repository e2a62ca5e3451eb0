package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

func TestInstrumentStore_InsertAndGet(t *testing.T) {
	pool := newTestPool(t)

	ctx := context.Background()
	store := NewInstrumentStore(pool)

	require.NoError(t, store.Insert(ctx, &domain.Instrument{
		Symbol:        "STXDIV.JO",
		Name:          "Satrix Dividend Plus ETF",
		DividendYield: ptr(0.052),
	}))
	require.NoError(t, store.Insert(ctx, &domain.Instrument{Symbol: "AGL.JO", Name: "Anglo American"}))

	got, err := store.GetBySymbol(ctx, "STXDIV.JO")
	require.NoError(t, err)
	assert.Equal(t, "Satrix Dividend Plus ETF", got.Name)
	require.NotNil(t, got.DividendYield)
	assert.InDelta(t, 0.052, *got.DividendYield, 1e-12)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "AGL.JO", all[0].Symbol)
	assert.Nil(t, all[0].DividendYield)
}

func TestInstrumentStore_Errors(t *testing.T) {
	pool := newTestPool(t)

	ctx := context.Background()
	store := NewInstrumentStore(pool)

	_, err := store.GetBySymbol(ctx, "MISSING")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Insert(ctx, &domain.Instrument{Symbol: "NPN.JO"}))
	err = store.Insert(ctx, &domain.Instrument{Symbol: "NPN.JO"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
