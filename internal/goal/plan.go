package goal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/observability"
	"robo-advisor-lab/internal/simulation"
	"robo-advisor-lab/internal/storage"
)

// GoalType selects which plan BuildPlan produces.
type GoalType string

const (
	GoalGrowth   GoalType = "growth"
	GoalBalanced GoalType = "balanced"
	GoalIncome   GoalType = "income"
)

// ParseGoalType maps loose input to a GoalType.
// Empty input means growth; anything unrecognised is treated as income.
func ParseGoalType(s string) GoalType {
	switch GoalType(strings.ToLower(strings.TrimSpace(s))) {
	case "", GoalGrowth:
		return GoalGrowth
	case GoalBalanced:
		return GoalBalanced
	default:
		return GoalIncome
	}
}

// Plan defaults.
const (
	DefaultTermYears          = 5.0
	DefaultAnnualReturnPct    = 8.0
	DefaultInflationTargetPct = 6.0
	DefaultIncomeGoal         = 12000.0
	MinIncomeYieldPct         = 0.5
)

// PlanRequest describes a savings goal. Nil pointers take the goal's default.
type PlanRequest struct {
	UserID    string
	GoalType  GoalType
	TermYears float64 // < 1 is raised to 1, 0 means DefaultTermYears

	TargetValue   *float64 // growth
	MonthlyBudget *float64 // growth, income

	InflationTargetType string   // balanced: "custom" uses InflationTargetPct
	InflationTargetPct  *float64 // balanced

	IncomeGoalAmount *float64 // income
	IncomeFrequency  string   // income: "monthly" (default) or "annual"
}

// PortfolioState is the current position a plan starts from.
type PortfolioState struct {
	TotalValue       float64
	WeightedYieldPct float64
}

// Plan is the result of BuildPlan. Fields that do not apply to the goal type are nil.
type Plan struct {
	GoalType  GoalType `json:"goal_type"`
	TermYears float64  `json:"term_years"`
	Message   string   `json:"message"`

	CurrentValue    float64  `json:"current_value"`
	TargetValue     *float64 `json:"target_value,omitempty"`
	ProgressPct     *float64 `json:"progress_pct,omitempty"`
	AnnualReturnPct *float64 `json:"annual_return_pct,omitempty"`

	RequiredMonthlyContribution *float64 `json:"required_monthly_contribution,omitempty"`
	LumpSumGap                  *float64 `json:"lump_sum_gap,omitempty"`
	MonthlyBudget               *float64 `json:"monthly_budget"`
	TimelineForBudgetMonths     *float64 `json:"timeline_for_budget_months"`

	InflationTargetPct *float64 `json:"inflation_target_pct,omitempty"`
	NominalReturnPct   *float64 `json:"nominal_return_pct,omitempty"`
	RealReturnPct      *float64 `json:"real_return_pct,omitempty"`
	Status             string   `json:"status,omitempty"`

	CurrentMonthlyIncome *float64 `json:"current_monthly_income,omitempty"`
	CurrentAnnualIncome  *float64 `json:"current_annual_income,omitempty"`
	TargetMonthlyIncome  *float64 `json:"target_monthly_income,omitempty"`
	TargetAnnualIncome   *float64 `json:"target_annual_income,omitempty"`
	DividendYieldPct     *float64 `json:"dividend_yield_pct,omitempty"`
}

// BuildPlan computes a plan for req from the portfolio state and a nominal
// annual return assumption. All monetary and percentage outputs are rounded to
// 2 decimal places, the budget timeline to 1.
func BuildPlan(req PlanRequest, state PortfolioState, annualReturnPct float64) *Plan {
	term := termYears(req.TermYears)
	current := state.TotalValue

	var plan *Plan
	switch req.GoalType {
	case GoalBalanced:
		plan = balancedPlan(req, current, annualReturnPct)
	case GoalIncome:
		plan = incomePlan(req, state, annualReturnPct, term)
	default:
		plan = growthPlan(req, current, annualReturnPct, term)
	}
	plan.TermYears = term
	plan.CurrentValue = round(current, 2)
	return plan
}

func growthPlan(req PlanRequest, current, annualReturnPct, term float64) *Plan {
	target := math.Max(current*1.5, current+50000)
	if req.TargetValue != nil {
		target = *req.TargetValue
	}

	progress := 0.0
	if target > 0 {
		progress = current / target * 100
	}
	gap := math.Max(target-current, 0)

	plan := &Plan{
		GoalType:                    GoalGrowth,
		TargetValue:                 rounded(target, 2),
		ProgressPct:                 rounded(progress, 2),
		AnnualReturnPct:             rounded(annualReturnPct, 2),
		RequiredMonthlyContribution: rounded(RequiredMonthlyContribution(target, current, annualReturnPct, term), 2),
		LumpSumGap:                  rounded(gap, 2),
		Message:                     "Your growth target is already met.",
	}
	if gap > 0 {
		plan.Message = "Add contributions or a top-up to reach your growth target."
	}
	plan.MonthlyBudget, plan.TimelineForBudgetMonths = budgetTimeline(req.MonthlyBudget, target, current, annualReturnPct)
	return plan
}

func balancedPlan(req PlanRequest, current, annualReturnPct float64) *Plan {
	inflationTarget := DefaultInflationTargetPct
	if strings.EqualFold(req.InflationTargetType, "custom") && req.InflationTargetPct != nil {
		inflationTarget = *req.InflationTargetPct
	}
	realReturn := annualReturnPct - inflationTarget

	plan := &Plan{
		GoalType:           GoalBalanced,
		InflationTargetPct: rounded(inflationTarget, 2),
		NominalReturnPct:   rounded(annualReturnPct, 2),
		RealReturnPct:      rounded(realReturn, 2),
	}
	if realReturn >= 0 {
		plan.Status = "ahead"
		plan.Message = fmt.Sprintf("You are beating inflation by %.1f pts.", realReturn)
	} else {
		plan.Status = "lagging"
		plan.Message = fmt.Sprintf("Portfolio return trails inflation by %.1f pts. Boost contributions or tilt to higher-growth sleeves.", math.Abs(realReturn))
	}
	return plan
}

func incomePlan(req PlanRequest, state PortfolioState, annualReturnPct, term float64) *Plan {
	goal := DefaultIncomeGoal
	if req.IncomeGoalAmount != nil {
		goal = *req.IncomeGoalAmount
	}
	targetAnnual := goal * 12
	if strings.EqualFold(req.IncomeFrequency, "annual") {
		targetAnnual = goal
	}

	yield := math.Max(state.WeightedYieldPct, MinIncomeYieldPct)
	currentAnnual := state.TotalValue * yield / 100
	targetCapital := targetAnnual / (yield / 100)

	plan := &Plan{
		GoalType:                    GoalIncome,
		CurrentMonthlyIncome:        rounded(currentAnnual/12, 2),
		CurrentAnnualIncome:         rounded(currentAnnual, 2),
		TargetMonthlyIncome:         rounded(targetAnnual/12, 2),
		TargetAnnualIncome:          rounded(targetAnnual, 2),
		DividendYieldPct:            rounded(yield, 2),
		RequiredMonthlyContribution: rounded(RequiredMonthlyContribution(targetCapital, state.TotalValue, annualReturnPct, term), 2),
		LumpSumGap:                  rounded(math.Max(targetCapital-state.TotalValue, 0), 2),
		Message:                     "Your income goal is already covered.",
	}
	if targetAnnual > currentAnnual {
		plan.Message = "Scale contributions or increase yield to reach your income goal."
	}
	plan.MonthlyBudget, plan.TimelineForBudgetMonths = budgetTimeline(req.MonthlyBudget, targetCapital, state.TotalValue, annualReturnPct)
	return plan
}

func budgetTimeline(budget *float64, target, current, annualReturnPct float64) (*float64, *float64) {
	if budget == nil || *budget == 0 {
		return nil, nil
	}
	months, ok := MonthsToReachTarget(*budget, target, current, annualReturnPct)
	if !ok {
		return rounded(*budget, 2), nil
	}
	return rounded(*budget, 2), rounded(months, 1)
}

func termYears(t float64) float64 {
	if t == 0 || math.IsNaN(t) {
		return DefaultTermYears
	}
	return math.Max(t, 1)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func rounded(v float64, places int32) *float64 {
	r := round(v, places)
	return &r
}

// Projector runs a stochastic projection for a request.
type Projector interface {
	Project(ctx context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error)
}

// Planner loads a user's portfolio state and return assumption, then builds plans.
type Planner struct {
	holdingStore    storage.HoldingStore
	instrumentStore storage.InstrumentStore
	priceStore      storage.PriceStore
	projector       Projector
	clock           func() time.Time
}

// PlannerOptions contains configuration for creating a Planner.
type PlannerOptions struct {
	HoldingStore    storage.HoldingStore
	InstrumentStore storage.InstrumentStore
	PriceStore      storage.PriceStore
	Projector       Projector        // nil uses DefaultAnnualReturnPct
	Clock           func() time.Time // defaults to time.Now
}

// NewPlanner creates a goal planner.
func NewPlanner(opts PlannerOptions) *Planner {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Planner{
		holdingStore:    opts.HoldingStore,
		instrumentStore: opts.InstrumentStore,
		priceStore:      opts.PriceStore,
		projector:       opts.Projector,
		clock:           opts.Clock,
	}
}

// Build resolves the user's state and return assumption and builds the plan.
func (p *Planner) Build(ctx context.Context, req PlanRequest) (*Plan, error) {
	state, err := p.State(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	term := termYears(req.TermYears)

	annualReturn, err := p.ReturnAssumption(ctx, req.UserID, state.TotalValue, term)
	if err != nil {
		return nil, err
	}

	plan := BuildPlan(req, state, annualReturn)
	observability.RecordGoalPlan(string(plan.GoalType))
	return plan, nil
}

// State values the user's holdings at their latest closes and estimates the
// weighted dividend yield. Holdings without any price row are skipped.
func (p *Planner) State(ctx context.Context, userID string) (PortfolioState, error) {
	holdings, err := p.holdingStore.GetByUser(ctx, userID)
	if err != nil {
		return PortfolioState{}, fmt.Errorf("load holdings: %w", err)
	}

	var state PortfolioState
	for _, h := range holdings {
		latest, err := p.priceStore.GetLatest(ctx, h.Symbol)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return PortfolioState{}, fmt.Errorf("load latest price for %s: %w", h.Symbol, err)
		}
		state.TotalValue += h.Quantity * latest.Close
	}

	state.WeightedYieldPct, err = simulation.WeightedDividendYield(ctx, holdings, p.instrumentStore, p.priceStore)
	if err != nil {
		return PortfolioState{}, err
	}
	return state, nil
}

// ReturnAssumption projects a lump sum of the current value over the term
// (at least 12 months) and returns its annualised return in percent.
// DefaultAnnualReturnPct is used when no projection is available.
func (p *Planner) ReturnAssumption(ctx context.Context, userID string, currentValue, term float64) (float64, error) {
	if p.projector == nil {
		return DefaultAnnualReturnPct, nil
	}
	months := max(int(term*12), 12)
	today := p.clock()
	report, err := p.projector.Project(ctx, domain.SimulationRequest{
		UserID:             userID,
		Timeframe:          domain.ResolveTimeframe(domain.TimeframeCustom, months, nil, nil, today),
		InvestmentMode:     domain.ModeLumpSum,
		InitialInvestment:  math.Max(currentValue, 1),
		DistributionPolicy: domain.PolicyReinvest,
	})
	if err != nil {
		return 0, fmt.Errorf("project return assumption: %w", err)
	}
	if report == nil || report.CAGR == nil {
		return DefaultAnnualReturnPct, nil
	}
	return *report.CAGR, nil
}
