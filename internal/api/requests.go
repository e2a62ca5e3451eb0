package api

import (
	"fmt"
	"strings"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/goal"
)

// SimulateRequest is the body of the simulation endpoints.
// Missing or unknown enum values take their defaults; only unparseable dates
// are rejected.
type SimulateRequest struct {
	UserID string `json:"user_id"`

	Timeframe    string `json:"timeframe"`
	CustomMonths int    `json:"custom_months"`
	CustomStart  string `json:"custom_start"`
	CustomEnd    string `json:"custom_end"`

	InvestmentMode      string  `json:"investment_mode"`
	InitialInvestment   float64 `json:"initial_investment"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	Cadence             string  `json:"contribution_frequency"`
	AnchorMonth         int     `json:"annual_month"`
	DistributionPolicy  string  `json:"distribution_policy"`

	Benchmark       string `json:"benchmark"`
	InflationAdjust bool   `json:"inflation_adjust"`

	Scenario *ScenarioRequest `json:"contribution_scenario,omitempty"`
}

// ScenarioRequest overrides parts of the baseline. Nil fields inherit.
type ScenarioRequest struct {
	InitialInvestment   *float64 `json:"initial_investment"`
	MonthlyContribution *float64 `json:"monthly_contribution"`
	InvestmentMode      *string  `json:"investment_mode"`
	DistributionPolicy  *string  `json:"distribution_policy"`
	Cadence             string   `json:"contribution_frequency"`
	AnchorMonth         int      `json:"annual_month"`
}

// PlanRequest is the body of POST /api/health/plan.
type PlanRequest struct {
	UserID              string   `json:"user_id"`
	GoalType            string   `json:"goal_type"`
	TermYears           float64  `json:"term_years"`
	TargetValue         *float64 `json:"target_value"`
	MonthlyBudget       *float64 `json:"monthly_budget"`
	InflationTargetType string   `json:"inflation_target_type"`
	InflationTargetPct  *float64 `json:"inflation_target_pct"`
	IncomeGoalAmount    *float64 `json:"income_goal_amount"`
	IncomeFrequency     string   `json:"income_frequency"`
}

// ToDomain resolves the request against today.
func (r SimulateRequest) ToDomain(today time.Time) (domain.SimulationRequest, error) {
	start, err := parseOptionalDate("custom_start", r.CustomStart)
	if err != nil {
		return domain.SimulationRequest{}, err
	}
	end, err := parseOptionalDate("custom_end", r.CustomEnd)
	if err != nil {
		return domain.SimulationRequest{}, err
	}

	key := strings.ToLower(strings.TrimSpace(r.Timeframe))
	if key == "" {
		key = domain.Timeframe1Y
	}

	req := domain.SimulationRequest{
		UserID:              strings.TrimSpace(r.UserID),
		Timeframe:           domain.ResolveTimeframe(key, r.CustomMonths, start, end, today),
		InvestmentMode:      domain.ParseInvestmentMode(r.InvestmentMode, domain.ModeLumpSum),
		InitialInvestment:   r.InitialInvestment,
		MonthlyContribution: r.MonthlyContribution,
		Cadence:             domain.ParseCadence(r.Cadence, r.AnchorMonth),
		DistributionPolicy:  domain.ParseDistributionPolicy(r.DistributionPolicy, domain.PolicyReinvest),
		BenchmarkSymbol:     strings.ToUpper(strings.TrimSpace(r.Benchmark)),
		InflationAdjust:     r.InflationAdjust,
	}
	return req.Normalized(), nil
}

// ToDomain converts the scenario overrides.
func (s *ScenarioRequest) ToDomain() *domain.ContributionScenario {
	if s == nil {
		return nil
	}
	out := &domain.ContributionScenario{
		InitialInvestment:   s.InitialInvestment,
		MonthlyContribution: s.MonthlyContribution,
		Cadence:             domain.ParseCadence(s.Cadence, s.AnchorMonth),
	}
	if s.InvestmentMode != nil {
		m := domain.ParseInvestmentMode(*s.InvestmentMode, domain.ModeLumpSum)
		out.InvestmentMode = &m
	}
	if s.DistributionPolicy != nil {
		p := domain.ParseDistributionPolicy(*s.DistributionPolicy, domain.PolicyReinvest)
		out.DistributionPolicy = &p
	}
	return out
}

// ToDomain converts the plan request.
func (r PlanRequest) ToDomain() goal.PlanRequest {
	return goal.PlanRequest{
		UserID:              strings.TrimSpace(r.UserID),
		GoalType:            goal.ParseGoalType(r.GoalType),
		TermYears:           r.TermYears,
		TargetValue:         r.TargetValue,
		MonthlyBudget:       r.MonthlyBudget,
		InflationTargetType: r.InflationTargetType,
		InflationTargetPct:  r.InflationTargetPct,
		IncomeGoalAmount:    r.IncomeGoalAmount,
		IncomeFrequency:     r.IncomeFrequency,
	}
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a YYYY-MM-DD date", domain.ErrInvalidConfiguration, field, s)
	}
	return &d, nil
}
