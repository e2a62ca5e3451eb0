package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
	"robo-advisor-lab/internal/storage/memory"
)

// orderValidatingPriceStore wraps a PriceStore and validates ordering in InsertBulk.
// Returns ErrInvalidOrdering if rows are not properly ordered.
type orderValidatingPriceStore struct {
	storage.PriceStore
	batches int
}

func (s *orderValidatingPriceStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if err := ValidatePriceOrdering(points); err != nil {
		return err
	}
	s.batches++
	return s.PriceStore.InsertBulk(ctx, points)
}

func newTestManager() (*Manager, *orderValidatingPriceStore, *memory.HoldingStore, *memory.InstrumentStore, *memory.InflationStore) {
	prices := &orderValidatingPriceStore{PriceStore: memory.NewPriceStore()}
	holdings := memory.NewHoldingStore()
	instruments := memory.NewInstrumentStore()
	infl := memory.NewInflationStore()
	mgr := NewManager(ManagerOptions{
		InstrumentStore: instruments,
		HoldingStore:    holdings,
		PriceStore:      prices,
		InflationStore:  infl,
	})
	return mgr, prices, holdings, instruments, infl
}

func TestManager_ImportPrices_SortsAndBatchesBySymbol(t *testing.T) {
	ctx := context.Background()
	mgr, prices, _, _, _ := newTestManager()

	csv := `symbol,date,close,dividend
STX40.JO,2023-01-03,81,
GRT.JO,2023-01-02,12.5,0.3
STX40.JO,2023-01-02,80,
`
	res, err := mgr.ImportPrices(ctx, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportPrices failed: %v (Manager must sort before InsertBulk)", err)
	}
	if res.Inserted != 3 {
		t.Errorf("expected 3 inserted, got %d", res.Inserted)
	}
	if prices.batches != 2 {
		t.Errorf("expected 2 batches, got %d", prices.batches)
	}

	got, err := prices.GetBySymbol(ctx, "STX40.JO")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(got) != 2 || got[0].Close != 80 {
		t.Errorf("expected 2 STX40.JO rows starting at 80, got %+v", got)
	}
	grt, _ := prices.GetBySymbol(ctx, "GRT.JO")
	if len(grt) != 1 || grt[0].Dividend != 0.3 {
		t.Errorf("expected GRT.JO dividend 0.3, got %+v", grt)
	}
}

func TestManager_ImportPrices_SkipsExistingSymbolBatch(t *testing.T) {
	ctx := context.Background()
	mgr, _, _, _, _ := newTestManager()

	csv := "symbol,date,close\nSTX40.JO,2023-01-02,80\n"
	if _, err := mgr.ImportPrices(ctx, strings.NewReader(csv)); err != nil {
		t.Fatalf("first import: %v", err)
	}

	res, err := mgr.ImportPrices(ctx, strings.NewReader(csv+"GRT.JO,2023-01-02,12\n"))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if res.Inserted != 1 || res.Skipped != 1 {
		t.Errorf("expected 1 inserted and 1 skipped, got %+v", res)
	}
}

func TestManager_ImportPrices_DuplicateRowInFile(t *testing.T) {
	mgr, _, _, _, _ := newTestManager()

	csv := "symbol,date,close\nSTX40.JO,2023-01-02,80\nSTX40.JO,2023-01-02,81\n"
	_, err := mgr.ImportPrices(context.Background(), strings.NewReader(csv))
	if !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("expected ErrInvalidOrdering, got %v", err)
	}
}

func TestManager_ImportHoldingsAndInstruments(t *testing.T) {
	ctx := context.Background()
	mgr, _, holdings, instruments, _ := newTestManager()

	inst := "symbol,name,dividend_yield\nSTXDIV.JO,Satrix Dividend Plus,0.045\nSYGWD.JO,Sygnia World,\n"
	res, err := mgr.ImportInstruments(ctx, strings.NewReader(inst))
	if err != nil {
		t.Fatalf("ImportInstruments: %v", err)
	}
	if res.Inserted != 2 {
		t.Errorf("expected 2 instruments, got %d", res.Inserted)
	}
	div, err := instruments.GetBySymbol(ctx, "STXDIV.JO")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if div.DividendYield == nil || *div.DividendYield != 0.045 {
		t.Errorf("expected yield 0.045, got %v", div.DividendYield)
	}
	world, _ := instruments.GetBySymbol(ctx, "SYGWD.JO")
	if world.DividendYield != nil {
		t.Errorf("expected nil yield, got %v", *world.DividendYield)
	}

	hold := "user_id,symbol,quantity,avg_price\nu1,STXDIV.JO,10,50\nu1,STXDIV.JO,5,50\nu2,SYGWD.JO,3,\n"
	res, err = mgr.ImportHoldings(ctx, strings.NewReader(hold))
	if err != nil {
		t.Fatalf("ImportHoldings: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 1 {
		t.Errorf("expected 2 inserted and 1 skipped, got %+v", res)
	}
	users, _ := holdings.ListUsers(ctx)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %v", users)
	}
}

func TestManager_SeedInflation(t *testing.T) {
	ctx := context.Background()
	mgr, _, _, _, infl := newTestManager()

	from := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)

	res, err := mgr.SeedInflation(ctx, from, to)
	if err != nil {
		t.Fatalf("SeedInflation: %v", err)
	}
	if res.Inserted != 12 {
		t.Errorf("expected 12 months, got %d", res.Inserted)
	}

	// Seeding again is a no-op
	res, err = mgr.SeedInflation(ctx, from, to)
	if err != nil {
		t.Fatalf("second SeedInflation: %v", err)
	}
	if res.Skipped != 12 {
		t.Errorf("expected 12 skipped, got %+v", res)
	}

	stored, _ := infl.GetByDateRange(ctx, from, to)
	if len(stored) != 12 {
		t.Errorf("expected 12 stored points, got %d", len(stored))
	}
}

func TestManager_NilStoresAreNoops(t *testing.T) {
	mgr := NewManager(ManagerOptions{})
	res, err := mgr.ImportPrices(context.Background(), strings.NewReader("garbage"))
	if err != nil || res.Inserted != 0 {
		t.Errorf("expected no-op, got %+v, %v", res, err)
	}
}
