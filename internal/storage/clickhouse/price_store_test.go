package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceStore_InsertAndQuery(t *testing.T) {
	conn := newTestConn(t)

	ctx := context.Background()
	store := NewPriceStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.PricePoint{
		{Symbol: "STX40.JO", Date: day(2024, time.January, 3), Close: 71.5},
		{Symbol: "STX40.JO", Date: day(2024, time.January, 2), Close: 70.0},
		{Symbol: "STX40.JO", Date: day(2024, time.March, 15), Close: 73.2, Dividend: 0.85},
		{Symbol: "GRT.JO", Date: day(2024, time.January, 2), Close: 12.1},
	}))

	all, err := store.GetBySymbol(ctx, "STX40.JO")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, day(2024, time.January, 2), all[0].Date)
	assert.Equal(t, day(2024, time.March, 15), all[2].Date)
	assert.InDelta(t, 0.85, all[2].Dividend, 1e-12)

	ranged, err := store.GetByDateRange(ctx, "STX40.JO", day(2024, time.January, 3), day(2024, time.March, 15))
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.InDelta(t, 71.5, ranged[0].Close, 1e-12)

	latest, err := store.GetLatest(ctx, "STX40.JO")
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.March, 15), latest.Date)

	divs, err := store.GetTrailingDividends(ctx, "STX40.JO", day(2023, time.March, 15), day(2024, time.March, 15))
	require.NoError(t, err)
	assert.InDelta(t, 0.85, divs, 1e-12)

	none, err := store.GetTrailingDividends(ctx, "GRT.JO", day(2023, time.March, 15), day(2024, time.March, 15))
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestPriceStore_Errors(t *testing.T) {
	conn := newTestConn(t)

	ctx := context.Background()
	store := NewPriceStore(conn)

	_, err := store.GetLatest(ctx, "MISSING")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.InsertBulk(ctx, []*domain.PricePoint{
		{Symbol: "NPN.JO", Date: day(2024, time.January, 2), Close: 3000},
		{Symbol: "NPN.JO", Date: day(2024, time.January, 2), Close: 3001},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	require.NoError(t, store.InsertBulk(ctx, []*domain.PricePoint{
		{Symbol: "NPN.JO", Date: day(2024, time.January, 2), Close: 3000},
	}))
	err = store.InsertBulk(ctx, []*domain.PricePoint{
		{Symbol: "NPN.JO", Date: day(2024, time.January, 3), Close: 3010},
		{Symbol: "NPN.JO", Date: day(2024, time.January, 2), Close: 3000},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	points, err := store.GetBySymbol(ctx, "NPN.JO")
	require.NoError(t, err)
	assert.Len(t, points, 1)
}
