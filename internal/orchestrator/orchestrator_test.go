package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/simulation"
	"robo-advisor-lab/internal/storage/memory"
)

var refreshNow = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func dailyPrices(symbol string, start time.Time, n int, price float64) []*domain.PricePoint {
	out := make([]*domain.PricePoint, n)
	for i := range out {
		out[i] = &domain.PricePoint{Symbol: symbol, Date: start.AddDate(0, 0, i), Close: price}
	}
	return out
}

type testStores struct {
	holdings    *memory.HoldingStore
	prices      *memory.PriceStore
	instruments *memory.InstrumentStore
	reports     *memory.ReportStore
}

func createTestStores() *testStores {
	return &testStores{
		holdings:    memory.NewHoldingStore(),
		prices:      memory.NewPriceStore(),
		instruments: memory.NewInstrumentStore(),
		reports:     memory.NewReportStore(),
	}
}

func (s *testStores) runner() *simulation.Runner {
	return simulation.NewRunner(simulation.RunnerOptions{
		HoldingStore:    s.holdings,
		InstrumentStore: s.instruments,
		PriceStore:      s.prices,
		ReportStore:     s.reports,
		Clock:           func() time.Time { return refreshNow },
	})
}

func TestOrchestrator_Run_NoUsers(t *testing.T) {
	stores := createTestStores()

	orch := New(Options{
		HoldingStore: stores.holdings,
		Simulator:    stores.runner(),
		Clock:        func() time.Time { return refreshNow },
	})

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(result.Users) != 0 {
		t.Errorf("expected 0 users, got %d", len(result.Users))
	}
	if result.Timeframe.Months != 12 {
		t.Errorf("expected default 12-month timeframe, got %d", result.Timeframe.Months)
	}
}

func TestOrchestrator_Run_MixedSources(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	holdings := []*domain.Holding{
		{UserID: "u1", Symbol: "STX40.JO", Quantity: 10},
		{UserID: "u2", Symbol: "NODATA", Quantity: 5},
		{UserID: "u3", Symbol: "STX40.JO", Quantity: 1},
	}
	for _, h := range holdings {
		if err := stores.holdings.Insert(ctx, h); err != nil {
			t.Fatalf("insert holding: %v", err)
		}
	}
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := stores.prices.InsertBulk(ctx, dailyPrices("STX40.JO", start, 400, 80)); err != nil {
		t.Fatalf("insert prices: %v", err)
	}

	orch := New(Options{
		HoldingStore: stores.holdings,
		Simulator:    stores.runner(),
		Template:     domain.SimulationRequest{InitialInvestment: 10000},
		Workers:      2,
		Clock:        func() time.Time { return refreshNow },
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(result.Users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(result.Users))
	}
	if result.Historical != 2 {
		t.Errorf("expected 2 historical, got %d", result.Historical)
	}
	if result.Stochastic != 1 {
		t.Errorf("expected 1 stochastic, got %d", result.Stochastic)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failed, got %d (%v)", result.Failed, result.Errors())
	}

	wantOrder := []string{"u1", "u2", "u3"}
	for i, u := range result.Users {
		if u.UserID != wantOrder[i] {
			t.Errorf("result %d: expected %s, got %s", i, wantOrder[i], u.UserID)
		}
		if _, err := stores.reports.GetByID(ctx, u.RunID); err != nil {
			t.Errorf("user %s: expected stored report %s, got %v", u.UserID, u.RunID, err)
		}
	}
}

func TestOrchestrator_Run_PicksUpHoldingChanges(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := stores.prices.InsertBulk(ctx, dailyPrices("AAA", start, 400, 80)); err != nil {
		t.Fatalf("insert prices: %v", err)
	}
	if err := stores.holdings.Insert(ctx, &domain.Holding{UserID: "u1", Symbol: "AAA", Quantity: 10}); err != nil {
		t.Fatalf("insert holding: %v", err)
	}

	orch := New(Options{
		HoldingStore: stores.holdings,
		Simulator:    stores.runner(),
		Template:     domain.SimulationRequest{InitialInvestment: 10000},
		Clock:        func() time.Time { return refreshNow },
	})

	first, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	rising := dailyPrices("BBB", start, 400, 0)
	for i, p := range rising {
		p.Close = 100 + float64(i)
	}
	if err := stores.prices.InsertBulk(ctx, rising); err != nil {
		t.Fatalf("insert prices: %v", err)
	}
	if err := stores.holdings.Insert(ctx, &domain.Holding{UserID: "u1", Symbol: "BBB", Quantity: 10}); err != nil {
		t.Fatalf("insert holding: %v", err)
	}

	second, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if first.Users[0].RunID == second.Users[0].RunID {
		t.Fatalf("expected a new run ID after the holdings change")
	}

	before, err := stores.reports.GetByID(ctx, first.Users[0].RunID)
	if err != nil {
		t.Fatalf("load first report: %v", err)
	}
	after, err := stores.reports.GetByID(ctx, second.Users[0].RunID)
	if err != nil {
		t.Fatalf("load second report: %v", err)
	}
	if after.Report.EndingValue <= before.Report.EndingValue {
		t.Errorf("expected rising holding to lift ending value, got %f then %f",
			before.Report.EndingValue, after.Report.EndingValue)
	}
}

type failingSimulator struct {
	failFor string
}

func (f failingSimulator) Refresh(_ context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error) {
	if req.UserID == f.failFor {
		return nil, errors.New("boom")
	}
	return &domain.PerformanceReport{RunID: "run-" + req.UserID, Source: domain.SourceStochastic}, nil
}

func TestOrchestrator_Run_UserFailureDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	for _, u := range []string{"a", "b", "c"} {
		if err := stores.holdings.Insert(ctx, &domain.Holding{UserID: u, Symbol: "X", Quantity: 1}); err != nil {
			t.Fatalf("insert holding: %v", err)
		}
	}

	orch := New(Options{
		HoldingStore: stores.holdings,
		Simulator:    failingSimulator{failFor: "b"},
		TimeframeKey: domain.Timeframe3Y,
		Clock:        func() time.Time { return refreshNow },
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", result.Failed)
	}
	if result.Stochastic != 2 {
		t.Errorf("expected 2 stochastic, got %d", result.Stochastic)
	}
	errs := result.Errors()
	if len(errs) != 1 || errs[0] != "b: boom" {
		t.Errorf("expected [b: boom], got %v", errs)
	}
	if result.Timeframe.Months != 36 {
		t.Errorf("expected 36 months, got %d", result.Timeframe.Months)
	}
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	stores := createTestStores()
	if err := stores.holdings.Insert(context.Background(), &domain.Holding{UserID: "a", Symbol: "X", Quantity: 1}); err != nil {
		t.Fatalf("insert holding: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(Options{HoldingStore: stores.holdings, Simulator: failingSimulator{}})
	_, err := orch.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
