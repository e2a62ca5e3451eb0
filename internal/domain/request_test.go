package domain

import (
	"math"
	"testing"
	"time"
)

func ptr[T any](v T) *T {
	return &v
}

func TestSimulationRequest_Normalized(t *testing.T) {
	req := SimulationRequest{
		InvestmentMode:      "weekly",
		InitialInvestment:   -500,
		MonthlyContribution: -10,
		DistributionPolicy:  "burn",
	}

	got := req.Normalized()

	if got.InitialInvestment != 0 {
		t.Errorf("expected initial 0, got %f", got.InitialInvestment)
	}
	if got.MonthlyContribution != 0 {
		t.Errorf("expected monthly 0, got %f", got.MonthlyContribution)
	}
	if got.InvestmentMode != ModeLumpSum {
		t.Errorf("expected lump_sum, got %s", got.InvestmentMode)
	}
	if got.DistributionPolicy != PolicyReinvest {
		t.Errorf("expected reinvest, got %s", got.DistributionPolicy)
	}
}

func TestSimulationRequest_NormalizedNonFiniteAmounts(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{math.NaN(), 0},
		{math.Inf(1), MaxAmount},
		{math.Inf(-1), 0},
		{1e308, MaxAmount},
		{2500, 2500},
	}

	for _, tt := range tests {
		got := SimulationRequest{InitialInvestment: tt.in, MonthlyContribution: tt.in}.Normalized()
		if got.InitialInvestment != tt.want {
			t.Errorf("initial %v: expected %v, got %v", tt.in, tt.want, got.InitialInvestment)
		}
		if got.MonthlyContribution != tt.want {
			t.Errorf("monthly %v: expected %v, got %v", tt.in, tt.want, got.MonthlyContribution)
		}
	}
}

func TestSimulationRequest_RecurringAmount(t *testing.T) {
	lump := SimulationRequest{InvestmentMode: ModeLumpSum, MonthlyContribution: 1000}
	if lump.RecurringAmount() != 0 {
		t.Errorf("expected no recurring amount in lump_sum mode, got %f", lump.RecurringAmount())
	}

	monthly := SimulationRequest{InvestmentMode: ModeMonthly, MonthlyContribution: 1000}
	if monthly.RecurringAmount() != 1000 {
		t.Errorf("expected 1000, got %f", monthly.RecurringAmount())
	}
}

func TestContributionScenario_Apply(t *testing.T) {
	base := SimulationRequest{
		UserID:              "u1",
		InvestmentMode:      ModeLumpSum,
		InitialInvestment:   10000,
		DistributionPolicy:  PolicyReinvest,
		BenchmarkSymbol:     "STX40.JO",
		MonthlyContribution: 0,
	}

	scenario := ContributionScenario{
		MonthlyContribution: ptr(2500.0),
		InvestmentMode:      ptr(ModeMonthly),
		DistributionPolicy:  ptr(DistributionPolicy("nope")),
		Cadence:             QuarterlyCadence(),
	}

	got := scenario.Apply(base)

	if got.InitialInvestment != 10000 {
		t.Errorf("expected inherited initial 10000, got %f", got.InitialInvestment)
	}
	if got.MonthlyContribution != 2500 {
		t.Errorf("expected 2500, got %f", got.MonthlyContribution)
	}
	if got.InvestmentMode != ModeMonthly {
		t.Errorf("expected monthly, got %s", got.InvestmentMode)
	}
	// Invalid policy override is ignored.
	if got.DistributionPolicy != PolicyReinvest {
		t.Errorf("expected reinvest, got %s", got.DistributionPolicy)
	}
	if got.Cadence.Kind() != CadenceQuarterly {
		t.Errorf("expected quarterly, got %s", got.Cadence.Kind())
	}
	if got.UserID != "u1" || got.BenchmarkSymbol != "STX40.JO" {
		t.Errorf("expected identity fields inherited, got %+v", got)
	}
}

func TestResolveTimeframe(t *testing.T) {
	today := time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC)

	tests := []struct {
		name       string
		key        string
		custom     int
		wantMonths int
		wantStart  time.Time
		wantLabel  string
	}{
		{name: "1y", key: "1y", wantMonths: 12, wantStart: time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), wantLabel: "1y"},
		{name: "3y", key: "3y", wantMonths: 36, wantStart: time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC), wantLabel: "3y"},
		{name: "unknown", key: "forever", wantMonths: 60, wantStart: time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC), wantLabel: "60m"},
		{name: "custom months", key: "custom", custom: 6, wantMonths: 6, wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), wantLabel: "custom"},
		{name: "custom clamped", key: "custom", custom: 1000, wantMonths: 360, wantStart: time.Date(1994, time.July, 1, 0, 0, 0, 0, time.UTC), wantLabel: "custom"},
		{name: "custom default", key: "custom", wantMonths: 60, wantStart: time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC), wantLabel: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := ResolveTimeframe(tt.key, tt.custom, nil, nil, today)
			if tf.Months != tt.wantMonths {
				t.Errorf("expected %d months, got %d", tt.wantMonths, tf.Months)
			}
			if !tf.Start.Equal(tt.wantStart) {
				t.Errorf("expected start %s, got %s", tt.wantStart.Format(DateLayout), tf.Start.Format(DateLayout))
			}
			if !tf.End.Equal(Day(today)) {
				t.Errorf("expected end %s, got %s", Day(today).Format(DateLayout), tf.End.Format(DateLayout))
			}
			if tf.Label() != tt.wantLabel {
				t.Errorf("expected label %s, got %s", tt.wantLabel, tf.Label())
			}
		})
	}
}

func TestResolveTimeframe_ExplicitRange(t *testing.T) {
	start := time.Date(2022, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, time.August, 2, 0, 0, 0, 0, time.UTC)

	tf := ResolveTimeframe(TimeframeCustom, 0, &start, &end, time.Now())

	if tf.Months != 6 {
		t.Errorf("expected 6 months, got %d", tf.Months)
	}
	if !tf.Start.Equal(time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected start 2022-03-01, got %s", tf.Start.Format(DateLayout))
	}

	// End before start becomes start + 1 month.
	tf = ResolveTimeframe(TimeframeCustom, 0, &end, &start, time.Now())
	if !tf.End.Equal(end.AddDate(0, 1, 0)) {
		t.Errorf("expected end %s, got %s", end.AddDate(0, 1, 0).Format(DateLayout), tf.End.Format(DateLayout))
	}
	if tf.Months != 2 {
		t.Errorf("expected 2 months, got %d", tf.Months)
	}
}

func TestNormalizeDividendYield(t *testing.T) {
	if v, ok := NormalizeDividendYield(0.045); !ok || v != 4.5 {
		t.Errorf("expected 4.5, got %f (%v)", v, ok)
	}
	if v, ok := NormalizeDividendYield(3.2); !ok || v != 3.2 {
		t.Errorf("expected 3.2, got %f (%v)", v, ok)
	}
	if _, ok := NormalizeDividendYield(-1); ok {
		t.Error("expected negative yield rejected")
	}
}

func TestNewHoldingSet(t *testing.T) {
	set := NewHoldingSet([]*Holding{
		{UserID: "u", Symbol: "A", Quantity: 10},
		{UserID: "u", Symbol: "A", Quantity: 5},
		{UserID: "u", Symbol: "B", Quantity: -1},
		nil,
	})

	if len(set) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(set))
	}
	if set["A"] != 15 {
		t.Errorf("expected 15 units of A, got %f", set["A"])
	}
}
