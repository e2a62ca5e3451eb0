// Package metrics derives return and risk statistics from value series.
package metrics

import (
	"math"
	"time"

	"robo-advisor-lab/internal/domain"
)

// SeriesStats holds the statistics shared by portfolio and benchmark series.
type SeriesStats struct {
	Years          float64
	TotalReturn    float64
	TotalReturnPct *float64
	CAGR           *float64
	Volatility     float64
	MaxDrawdown    float64
}

// Values extracts the values of a series.
func Values(points []domain.ValuePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// ElapsedYears returns the span of points in years, with a one-day minimum.
func ElapsedYears(points []domain.ValuePoint) float64 {
	if len(points) == 0 {
		return 1 / DaysPerYear
	}
	days := math.Round(points[len(points)-1].Date.Sub(points[0].Date).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days / DaysPerYear
}

// ElapsedMonths returns the span of points rounded to 30-day months, minimum 1.
func ElapsedMonths(points []domain.ValuePoint) int {
	if len(points) == 0 {
		return 1
	}
	days := points[len(points)-1].Date.Sub(points[0].Date) / (24 * time.Hour)
	months := int(math.Round(float64(days) / 30))
	if months < 1 {
		months = 1
	}
	return months
}

// Aggregate computes SeriesStats for a portfolio series.
// endingGross includes any proceeds kept outside the series (cash-out dividends).
func Aggregate(series []domain.ValuePoint, invested, endingGross, years, periodsPerYear float64) SeriesStats {
	values := Values(series)
	return SeriesStats{
		Years:          years,
		TotalReturn:    endingGross - invested,
		TotalReturnPct: TotalReturnPct(invested, endingGross),
		CAGR:           CAGR(invested, endingGross, years),
		Volatility:     Volatility(values, periodsPerYear),
		MaxDrawdown:    MaxDrawdown(values),
	}
}

// AggregateBenchmark computes SeriesStats for a benchmark series, measuring
// growth from its first to its last value.
func AggregateBenchmark(series []domain.ValuePoint, years, periodsPerYear float64) SeriesStats {
	values := Values(series)
	stats := SeriesStats{
		Years:       years,
		Volatility:  Volatility(values, periodsPerYear),
		MaxDrawdown: MaxDrawdown(values),
	}
	if len(values) == 0 {
		return stats
	}
	first, last := values[0], values[len(values)-1]
	stats.TotalReturn = last - first
	stats.TotalReturnPct = TotalReturnPct(first, last)
	stats.CAGR = CAGR(first, last, years)
	return stats
}
