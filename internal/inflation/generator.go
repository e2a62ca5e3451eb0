package inflation

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/idhash"
)

// Mock feed parameters.
const (
	initialRate = 0.05 // annual, as a fraction
	maxShock    = 0.1  // relative monthly change bound
)

// Generator is a deterministic mock inflation feed.
// The same (from, to) pair always yields the same series.
type Generator struct{}

// NewGenerator creates a mock inflation generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// InflationSeries implements Source. It emits one point per month from the
// month of from up to to, starting near 5% and drifting by at most 10% of the
// current rate each month. Rates are rounded to 2 decimals.
func (g *Generator) InflationSeries(_ context.Context, from, to time.Time) ([]domain.InflationPoint, error) {
	return Generate(from, to), nil
}

// Generate is the context-free form of Generator.InflationSeries.
func Generate(from, to time.Time) []domain.InflationPoint {
	from = domain.Day(from)
	to = domain.Day(to)
	if to.Before(from) {
		return nil
	}

	seed := idhash.ComputeInflationSeed(from, to)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var out []domain.InflationPoint
	rate := initialRate
	for m := domain.FirstOfMonth(from); !m.After(to); m = m.AddDate(0, 1, 0) {
		rate *= 1 + (rng.Float64()*2-1)*maxShock
		pct, _ := decimal.NewFromFloat(rate * 100).Round(2).Float64()
		out = append(out, domain.InflationPoint{Date: m, RatePct: pct})
	}
	return out
}

var _ Source = (*Generator)(nil)
