package simulation

import (
	"context"
	"testing"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/lookup"
	"robo-advisor-lab/internal/storage/memory"
)

var jan2023 = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Helper to create a daily price series starting at start.
// divs maps a row index to the dividend per unit paid that day.
func makePriceSeries(symbol string, start time.Time, closes []float64, divs map[int]float64) []*domain.PricePoint {
	result := make([]*domain.PricePoint, len(closes))
	for i, c := range closes {
		result[i] = &domain.PricePoint{
			Symbol:   symbol,
			Date:     start.AddDate(0, 0, i),
			Close:    c,
			Dividend: divs[i],
		}
	}
	return result
}

// Helper to create a constant price slice.
func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func mustAlign(t *testing.T, series ...[]*domain.PricePoint) *lookup.Table {
	t.Helper()
	bySymbol := make(map[string][]*domain.PricePoint, len(series))
	for _, s := range series {
		if len(s) > 0 {
			bySymbol[s[0].Symbol] = s
		}
	}
	table, err := lookup.Align(bySymbol, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	return table
}

type fixture struct {
	holdings    *memory.HoldingStore
	prices      *memory.PriceStore
	instruments *memory.InstrumentStore
	reports     *memory.ReportStore
	inflation   *memory.InflationStore
}

func newFixture() *fixture {
	return &fixture{
		holdings:    memory.NewHoldingStore(),
		prices:      memory.NewPriceStore(),
		instruments: memory.NewInstrumentStore(),
		reports:     memory.NewReportStore(),
		inflation:   memory.NewInflationStore(),
	}
}

func (f *fixture) hold(t *testing.T, userID, symbol string, qty float64) {
	t.Helper()
	if err := f.holdings.Insert(context.Background(), &domain.Holding{UserID: userID, Symbol: symbol, Quantity: qty}); err != nil {
		t.Fatalf("insert holding: %v", err)
	}
}

func (f *fixture) price(t *testing.T, points []*domain.PricePoint) {
	t.Helper()
	if err := f.prices.InsertBulk(context.Background(), points); err != nil {
		t.Fatalf("insert prices: %v", err)
	}
}

func customTimeframe(start, end time.Time) domain.Timeframe {
	return domain.ResolveTimeframe(domain.TimeframeCustom, 0, &start, &end, end)
}
