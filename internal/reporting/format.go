package reporting

import (
	"math"

	"github.com/shopspring/decimal"

	"robo-advisor-lab/internal/domain"
)

// Round rounds v to 2 decimal places, half away from zero.
// This is the only place report figures are rounded. NaN and ±Inf become 0.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// roundPtr treats a non-finite value as undefined.
func roundPtr(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	v := Round(*p)
	return &v
}

func roundSeries(points []domain.ValuePoint) []domain.ValuePoint {
	if points == nil {
		return nil
	}
	out := make([]domain.ValuePoint, len(points))
	for i, p := range points {
		out[i] = domain.ValuePoint{Date: p.Date, Value: Round(p.Value)}
	}
	return out
}

// RoundReport returns a copy of r with every monetary and percentage field
// rounded to 2 decimal places. r is not modified.
func RoundReport(r *domain.PerformanceReport) *domain.PerformanceReport {
	if r == nil {
		return nil
	}
	out := *r

	out.Series = roundSeries(r.Series)
	out.SeriesReal = roundSeries(r.SeriesReal)
	if r.InflationSeries != nil {
		out.InflationSeries = make([]domain.InflationPoint, len(r.InflationSeries))
		for i, p := range r.InflationSeries {
			out.InflationSeries[i] = domain.InflationPoint{Date: p.Date, RatePct: Round(p.RatePct)}
		}
	}
	if r.AnnualMonth != nil {
		m := *r.AnnualMonth
		out.AnnualMonth = &m
	}

	out.TotalInvested = Round(r.TotalInvested)
	out.EndingValue = Round(r.EndingValue)
	out.EndingValueHoldings = Round(r.EndingValueHoldings)
	out.TotalReturn = Round(r.TotalReturn)
	out.TotalReturnPct = roundPtr(r.TotalReturnPct)
	out.CAGR = roundPtr(r.CAGR)
	out.Volatility = Round(r.Volatility)
	out.MaxDrawdown = Round(r.MaxDrawdown)

	out.AverageDividendYield = roundPtr(r.AverageDividendYield)
	out.TotalDividends = Round(r.TotalDividends)
	out.DividendsDistributed = Round(r.DividendsDistributed)
	out.UninvestedCash = Round(r.UninvestedCash)

	out.TotalReturnReal = roundPtr(r.TotalReturnReal)
	out.CAGRReal = roundPtr(r.CAGRReal)
	out.RealDividendsDistributed = roundPtr(r.RealDividendsDistributed)
	out.DownsideCapture = roundPtr(r.DownsideCapture)

	if b := r.Benchmark; b != nil {
		out.Benchmark = &domain.BenchmarkStats{
			Symbol:               b.Symbol,
			Label:                b.Label,
			Series:               roundSeries(b.Series),
			TotalReturnPct:       roundPtr(b.TotalReturnPct),
			CAGR:                 roundPtr(b.CAGR),
			Volatility:           roundPtr(b.Volatility),
			MaxDrawdown:          roundPtr(b.MaxDrawdown),
			TotalDividends:       roundPtr(b.TotalDividends),
			AverageDividendYield: roundPtr(b.AverageDividendYield),
		}
	}

	return &out
}

// RoundComparison rounds both sides of a comparison.
func RoundComparison(c *domain.Comparison) *domain.Comparison {
	if c == nil {
		return nil
	}
	return &domain.Comparison{
		Baseline: RoundReport(c.Baseline),
		Scenario: RoundReport(c.Scenario),
	}
}
