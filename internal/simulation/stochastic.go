package simulation

import (
	"math"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/metrics"
	"robo-advisor-lab/internal/schedule"
)

// Portfolio walk parameters.
const (
	ProjectionDrift      = 0.006 // mean monthly return
	ProjectionVolatility = 0.025 // monthly standard deviation
	growthFloor          = 0.5   // a month never loses more than half the value
	minProjectionYears   = 0.0001
)

// ProjectionInputs are the non-request inputs of a projection.
type ProjectionInputs struct {
	DividendYieldPct float64                 // annual yield estimate in percent
	Seed             uint64                  // portfolio stream
	BenchmarkSeed    uint64                  // benchmark stream, used when the request names a benchmark
	Inflation        []domain.InflationPoint // used when the request is inflation adjusted
}

// Projector runs seeded monthly random walks.
type Projector struct {
	newSource SourceFactory
}

// NewProjector creates a projector backed by NewRandomSource.
func NewProjector() *Projector {
	return &Projector{newSource: NewRandomSource}
}

// WithSourceFactory replaces the random source factory.
func (p *Projector) WithSourceFactory(f SourceFactory) *Projector {
	p.newSource = f
	return p
}

// walk is one monthly random walk over the axis.
type walk struct {
	series      []domain.ValuePoint
	invested    float64
	generated   float64
	distributed float64
}

// Project simulates req.Timeframe.Months monthly steps from the start month.
// Identical requests and inputs produce identical reports.
func (p *Projector) Project(req domain.SimulationRequest, in ProjectionInputs) *domain.PerformanceReport {
	req = req.Normalized()
	months := req.Timeframe.Months
	if months < 1 {
		months = 1
	}

	axis := schedule.MonthlyAxis(req.Timeframe.Start, months)
	contributions := schedule.ByDate(schedule.Schedule(axis, req.Cadence, req.RecurringAmount()))
	dividendRate := math.Max(in.DividendYieldPct, 0) / 100 / 12

	portfolio := runWalk(axis, req.LumpSum(), contributions, p.newSource(in.Seed),
		ProjectionDrift, ProjectionVolatility, dividendRate, req.DistributionPolicy)

	years := math.Max(float64(months)/12, minProjectionYears)
	report := newReport(req, domain.SourceStochastic, portfolio.series, portfolio.invested, portfolio.distributed, years, metrics.MonthsPerYear)
	report.Months = months
	report.TotalDividends = portfolio.generated
	report.AverageDividendYield = metrics.AverageDividendYield(portfolio.generated, portfolio.invested, years)

	if req.BenchmarkSymbol != "" {
		profile := domain.LookupBenchmarkProfile(req.BenchmarkSymbol)
		bench := runWalk(axis, req.LumpSum(), contributions, p.newSource(in.BenchmarkSeed),
			profile.Drift, profile.Volatility, 0, domain.PolicyReinvest)
		stats := metrics.AggregateBenchmark(bench.series, years, metrics.MonthsPerYear)

		report.Benchmark = &domain.BenchmarkStats{
			Symbol:         profile.Symbol,
			Label:          profile.Label,
			Series:         bench.series,
			TotalReturnPct: stats.TotalReturnPct,
			CAGR:           stats.CAGR,
			Volatility:     &stats.Volatility,
			MaxDrawdown:    &stats.MaxDrawdown,
		}
		report.DownsideCapture = downsideCapture(portfolio.series, report.Benchmark, report.TotalReturnPct)
	}

	if req.InflationAdjust {
		applyInflation(report, in.Inflation, portfolio.distributed, years)
	}

	return report
}

// runWalk applies, per month: contributions, a Gaussian return floored at
// growthFloor, then the monthly dividend. cash_out extracts the dividend from
// the value; reinvest adds it.
func runWalk(
	axis []time.Time,
	lumpSum float64,
	contributions map[time.Time]float64,
	rng RandomSource,
	drift, vol, dividendRate float64,
	policy domain.DistributionPolicy,
) walk {
	w := walk{series: make([]domain.ValuePoint, 0, len(axis))}
	value := 0.0

	for i, d := range axis {
		contribution := contributions[d]
		if i == 0 && lumpSum > 0 {
			contribution += lumpSum
		}
		if contribution > 0 {
			value += contribution
			w.invested += contribution
		}

		change := drift + vol*rng.NormFloat64()
		value *= math.Max(growthFloor, 1+change)

		if income := value * dividendRate; income > 0 {
			if policy == domain.PolicyCashOut {
				payout := math.Min(income, value)
				value -= payout
				w.distributed += payout
				w.generated += payout
			} else {
				value += income
				w.generated += income
			}
		}

		w.series = append(w.series, domain.ValuePoint{Date: d, Value: value})
	}
	return w
}
