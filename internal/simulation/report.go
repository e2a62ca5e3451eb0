package simulation

import (
	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/inflation"
	"robo-advisor-lab/internal/metrics"
)

// newReport fills the fields shared by both engines.
// The headline ending value adds cash-out proceeds back to the series value.
func newReport(req domain.SimulationRequest, source domain.ReportSource, series []domain.ValuePoint, invested, distributed, years, periodsPerYear float64) *domain.PerformanceReport {
	endingHoldings := 0.0
	if len(series) > 0 {
		endingHoldings = series[len(series)-1].Value
	}
	endingGross := endingHoldings + distributed
	stats := metrics.Aggregate(series, invested, endingGross, years, periodsPerYear)

	report := &domain.PerformanceReport{
		UserID:                req.UserID,
		Source:                source,
		Series:                series,
		TotalInvested:         invested,
		EndingValue:           endingGross,
		EndingValueHoldings:   endingHoldings,
		TotalReturn:           stats.TotalReturn,
		TotalReturnPct:        stats.TotalReturnPct,
		CAGR:                  stats.CAGR,
		Volatility:            stats.Volatility,
		MaxDrawdown:           stats.MaxDrawdown,
		Timeframe:             req.Timeframe.Label(),
		InvestmentMode:        req.InvestmentMode,
		DistributionPolicy:    req.DistributionPolicy,
		ContributionFrequency: req.Cadence.Kind(),
		DividendsDistributed:  distributed,
	}
	if req.Cadence.Kind() == domain.CadenceAnnual {
		report.AnnualMonth = req.Cadence.AnchorMonthPtr()
	}
	if len(series) > 0 {
		report.StartDate = series[0].Date
		report.EndDate = series[len(series)-1].Date
	}
	return report
}

// applyInflation adds the real series and real statistics to report.
func applyInflation(report *domain.PerformanceReport, points []domain.InflationPoint, distributed, years float64) {
	deflated := inflation.Deflate(report.Series, points)

	realEnding := 0.0
	if n := len(deflated.Real); n > 0 {
		realEnding = deflated.Real[n-1].Value
	}
	realDividends := distributed / deflated.LastFactor()
	grossReal := realEnding + realDividends
	totalReturnReal := grossReal - report.TotalInvested

	report.InflationAdjusted = true
	report.SeriesReal = deflated.Real
	report.InflationSeries = points
	report.TotalReturnReal = &totalReturnReal
	report.CAGRReal = metrics.CAGR(report.TotalInvested, grossReal, years)
	report.RealDividendsDistributed = &realDividends
}

// downsideCapture aligns the portfolio with the benchmark's dates and measures
// how much of the benchmark's falls the portfolio took.
func downsideCapture(portfolio []domain.ValuePoint, bench *domain.BenchmarkStats, portfolioTotalPct *float64) *float64 {
	offset := len(portfolio) - len(bench.Series)
	if offset < 0 {
		return nil
	}
	return metrics.DownsideCapture(
		metrics.Values(portfolio[offset:]),
		metrics.Values(bench.Series),
		portfolioTotalPct,
		bench.TotalReturnPct,
	)
}
