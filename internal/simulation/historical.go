package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/inflation"
	"robo-advisor-lab/internal/lookup"
	"robo-advisor-lab/internal/metrics"
	"robo-advisor-lab/internal/schedule"
	"robo-advisor-lab/internal/storage"
)

// HistoricalCalculator replays real price history for a user's holdings.
type HistoricalCalculator struct {
	holdingStore storage.HoldingStore
	priceStore   storage.PriceStore
	inflation    inflation.Source
}

// HistoricalOptions contains configuration for creating a HistoricalCalculator.
type HistoricalOptions struct {
	HoldingStore storage.HoldingStore
	PriceStore   storage.PriceStore
	Inflation    inflation.Source // required only for inflation-adjusted requests
}

// NewHistoricalCalculator creates a historical calculator.
func NewHistoricalCalculator(opts HistoricalOptions) *HistoricalCalculator {
	return &HistoricalCalculator{
		holdingStore: opts.HoldingStore,
		priceStore:   opts.PriceStore,
		inflation:    opts.Inflation,
	}
}

// Calculate runs the portfolio (and optional benchmark) over req's timeframe.
// Steps:
//  1. Load holdings; none → ErrNotAvailable
//  2. Load each held symbol's rows in range and align them
//  3. Derive fallback weights from holdings at the latest aligned prices
//  4. Schedule contributions on the aligned dates and walk the path
//  5. Derive statistics
//  6. Walk the benchmark with the same schedule, if requested and priced
//  7. Deflate by inflation, if requested
//
// Returns ErrNotAvailable when there is nothing to replay and
// lookup.ErrMalformedSeries when a series breaks the price source contract.
func (c *HistoricalCalculator) Calculate(ctx context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error) {
	req = req.Normalized()
	from, to := req.Timeframe.Start, req.Timeframe.End

	// 1. Load holdings
	holdings, err := c.holdingStore.GetByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	set := domain.NewHoldingSet(holdings)
	if len(set) == 0 {
		return nil, ErrNotAvailable
	}

	// 2. Load and align price history
	series := make(map[string][]*domain.PricePoint, len(set))
	for symbol := range set {
		rows, err := c.priceStore.GetByDateRange(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("load prices for %s: %w", symbol, err)
		}
		series[symbol] = rows
	}
	table, err := lookup.Align(series, from, to)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, ErrNotAvailable
	}

	// 3. Fallback weights by value at latest prices, equal when nothing is priced
	fallback := make(map[string]float64, len(table.Symbols))
	total := 0.0
	for _, symbol := range table.Symbols {
		if p, ok := table.LatestPrice(symbol); ok {
			fallback[symbol] = set[symbol] * p
			total += fallback[symbol]
		}
	}
	if total <= 0 {
		for _, symbol := range table.Symbols {
			fallback[symbol] = 1
		}
	}

	// 4. Walk the path
	cfg := PathConfig{
		LumpSum:         req.LumpSum(),
		Contributions:   schedule.ByDate(schedule.Schedule(table.Dates, req.Cadence, req.RecurringAmount())),
		Policy:          req.DistributionPolicy,
		FallbackWeights: fallback,
	}
	path := SimulatePath(table, cfg)

	// 5. Statistics
	years := metrics.ElapsedYears(path.Series)
	report := newReport(req, domain.SourceHistorical, path.Series, path.TotalInvested, path.DividendsDistributed, years, metrics.TradingDaysPerYear)
	report.Months = metrics.ElapsedMonths(path.Series)
	report.TotalDividends = path.DividendsGenerated
	report.UninvestedCash = path.UninvestedCash
	report.AverageDividendYield = metrics.AverageDividendYield(path.DividendsGenerated, path.TotalInvested, years)

	// 6. Benchmark
	if req.BenchmarkSymbol != "" {
		bench, err := c.benchmark(ctx, req, path.Series, years)
		if err != nil {
			return nil, err
		}
		if bench != nil {
			report.Benchmark = bench
			report.DownsideCapture = downsideCapture(path.Series, bench, report.TotalReturnPct)
		}
	}

	// 7. Inflation
	if req.InflationAdjust {
		if err := c.adjustForInflation(ctx, report, path.DividendsDistributed, years); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// benchmark buys the benchmark alone with the same contributions.
// Returns nil when the benchmark has no rows in range.
func (c *HistoricalCalculator) benchmark(ctx context.Context, req domain.SimulationRequest, portfolio []domain.ValuePoint, years float64) (*domain.BenchmarkStats, error) {
	symbol := req.BenchmarkSymbol
	rows, err := c.priceStore.GetByDateRange(ctx, symbol, req.Timeframe.Start, req.Timeframe.End)
	if err != nil {
		return nil, fmt.Errorf("load benchmark prices for %s: %w", symbol, err)
	}
	table, err := lookup.Align(map[string][]*domain.PricePoint{symbol: rows}, req.Timeframe.Start, req.Timeframe.End)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, nil
	}

	path := SimulatePath(table, PathConfig{
		LumpSum:         req.LumpSum(),
		Contributions:   schedule.ByDate(schedule.Schedule(table.Dates, req.Cadence, req.RecurringAmount())),
		Policy:          req.DistributionPolicy,
		FallbackWeights: map[string]float64{symbol: 1},
	})

	dates := make([]time.Time, len(portfolio))
	for i, p := range portfolio {
		dates[i] = p.Date
	}
	aligned := lookup.Reindex(path.Series, dates)

	profile := domain.LookupBenchmarkProfile(symbol)
	stats := metrics.AggregateBenchmark(aligned, years, metrics.TradingDaysPerYear)
	dividends := path.DividendsGenerated

	return &domain.BenchmarkStats{
		Symbol:               symbol,
		Label:                profile.Label,
		Series:               aligned,
		TotalReturnPct:       stats.TotalReturnPct,
		CAGR:                 stats.CAGR,
		Volatility:           &stats.Volatility,
		MaxDrawdown:          &stats.MaxDrawdown,
		TotalDividends:       &dividends,
		AverageDividendYield: metrics.AverageDividendYield(dividends, path.TotalInvested, years),
	}, nil
}

func (c *HistoricalCalculator) adjustForInflation(ctx context.Context, report *domain.PerformanceReport, distributed, years float64) error {
	if c.inflation == nil {
		return errors.New("inflation adjustment requested without an inflation source")
	}
	points, err := c.inflation.InflationSeries(ctx, report.StartDate, report.EndDate)
	if err != nil {
		return fmt.Errorf("load inflation series: %w", err)
	}
	applyInflation(report, points, distributed, years)
	return nil
}
