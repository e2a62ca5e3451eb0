package domain

import (
	"math"
	"time"
)

// MaxAmount caps a single lump sum or recurring contribution so that
// compounding over the longest timeframe stays finite.
const MaxAmount = 1e15

// SimulationRequest carries everything a performance run needs.
// Build it at the boundary, then call Normalized before handing it to the engine.
type SimulationRequest struct {
	UserID              string
	Timeframe           Timeframe
	InvestmentMode      InvestmentMode
	InitialInvestment   float64 // lump sum on the first simulated date
	MonthlyContribution float64 // recurring amount, used only in ModeMonthly
	Cadence             Cadence
	DistributionPolicy  DistributionPolicy
	BenchmarkSymbol     string // empty for no benchmark
	InflationAdjust     bool
}

// Normalized applies the permissive-input policy: negative or non-finite amounts
// become zero, amounts above MaxAmount are capped, unknown modes and policies
// take their defaults.
func (r SimulationRequest) Normalized() SimulationRequest {
	r.InitialInvestment = clampAmount(r.InitialInvestment)
	r.MonthlyContribution = clampAmount(r.MonthlyContribution)
	if !r.InvestmentMode.IsValid() {
		r.InvestmentMode = ModeLumpSum
	}
	if !r.DistributionPolicy.IsValid() {
		r.DistributionPolicy = PolicyReinvest
	}
	return r
}

func clampAmount(v float64) float64 {
	switch {
	case math.IsNaN(v), math.IsInf(v, -1), v < 0:
		return 0
	case v > MaxAmount:
		return MaxAmount
	}
	return v
}

// RecurringAmount is the scheduled contribution amount for this request.
func (r SimulationRequest) RecurringAmount() float64 {
	if r.InvestmentMode != ModeMonthly || r.MonthlyContribution <= 0 {
		return 0
	}
	return r.MonthlyContribution
}

// LumpSum is the first-date contribution for this request.
func (r SimulationRequest) LumpSum() float64 {
	if r.InitialInvestment <= 0 {
		return 0
	}
	return r.InitialInvestment
}

// ContributionScenario overrides parts of a baseline request for a what-if run.
// Nil fields inherit the baseline value.
type ContributionScenario struct {
	InitialInvestment   *float64
	MonthlyContribution *float64
	InvestmentMode      *InvestmentMode
	DistributionPolicy  *DistributionPolicy
	Cadence             Cadence
}

// Apply returns base with the scenario overrides applied.
func (s ContributionScenario) Apply(base SimulationRequest) SimulationRequest {
	out := base
	if s.InitialInvestment != nil {
		out.InitialInvestment = *s.InitialInvestment
	}
	if s.MonthlyContribution != nil {
		out.MonthlyContribution = *s.MonthlyContribution
	}
	if s.InvestmentMode != nil {
		out.InvestmentMode = *s.InvestmentMode
	}
	if s.DistributionPolicy != nil && s.DistributionPolicy.IsValid() {
		out.DistributionPolicy = *s.DistributionPolicy
	}
	out.Cadence = s.Cadence
	return out.Normalized()
}

// ContributionEvent is a cash injection on a given date.
type ContributionEvent struct {
	Date   time.Time
	Amount float64 // > 0
}
