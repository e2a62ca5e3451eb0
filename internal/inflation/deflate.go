package inflation

import (
	"math"
	"sort"

	"robo-advisor-lab/internal/domain"
)

// DefaultRatePct is used for months before the first known inflation point.
const DefaultRatePct = 5.0

// Deflation is a value series expressed in start-of-period money.
type Deflation struct {
	Real    []domain.ValuePoint
	Factors []float64 // cumulative price level per point, 1 at the first point
}

// LastFactor returns the cumulative price level at the last point, or 1.
func (d Deflation) LastFactor() float64 {
	if len(d.Factors) == 0 {
		return 1
	}
	return d.Factors[len(d.Factors)-1]
}

// Deflate divides series by a compounding monthly price level.
// The level starts at 1 and advances once per calendar month entered after the
// first point by (1 + rate/100)^(1/12), using that month's rate or the latest
// earlier one.
func Deflate(series []domain.ValuePoint, points []domain.InflationPoint) Deflation {
	sorted := make([]domain.InflationPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := Deflation{
		Real:    make([]domain.ValuePoint, len(series)),
		Factors: make([]float64, len(series)),
	}

	// The first point is the base period: no monthly factor applies to it.
	level := 1.0
	lastMonth := 0
	for i, p := range series {
		month := domain.MonthIndex(p.Date)
		if i > 0 && month != lastMonth {
			rate := rateFor(month, sorted)
			level *= math.Pow(1+rate/100, 1.0/12)
		}
		lastMonth = month

		out.Factors[i] = level
		out.Real[i] = domain.ValuePoint{Date: p.Date, Value: p.Value / level}
	}
	return out
}

// rateFor returns the rate for month, or the latest earlier rate.
func rateFor(month int, sorted []domain.InflationPoint) float64 {
	rate := DefaultRatePct
	for _, p := range sorted {
		if domain.MonthIndex(p.Date) > month {
			break
		}
		rate = p.RatePct
	}
	return rate
}
