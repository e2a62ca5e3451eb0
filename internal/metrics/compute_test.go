package metrics

import (
	"math"
	"testing"
)

func TestPeriodReturns(t *testing.T) {
	got := PeriodReturns([]float64{100, 110, 99, 0, 10})

	if len(got) != 4 {
		t.Fatalf("expected 4 returns, got %d", len(got))
	}
	if math.Abs(got[0]-0.10) > 1e-12 {
		t.Errorf("expected 0.10, got %f", got[0])
	}
	if math.Abs(got[1]-(-0.10)) > 1e-12 {
		t.Errorf("expected -0.10, got %f", got[1])
	}
	// Return after a zero value is undefined
	if !math.IsNaN(got[3]) {
		t.Errorf("expected NaN after zero value, got %f", got[3])
	}

	if PeriodReturns([]float64{1}) != nil {
		t.Error("expected nil for single value")
	}
}

func TestVolatility_Flat(t *testing.T) {
	values := []float64{100, 100, 100, 100}
	if v := Volatility(values, TradingDaysPerYear); v != 0 {
		t.Errorf("expected 0, got %f", v)
	}
}

func TestVolatility_TooFewReturns(t *testing.T) {
	if v := Volatility([]float64{100, 120}, TradingDaysPerYear); v != 0 {
		t.Errorf("expected 0 with one return, got %f", v)
	}
}

func TestVolatility_SampleStdDev(t *testing.T) {
	// Returns: +10%, -10%. Sample std = sqrt(((0.1)^2 + (0.1)^2) / 1) = 0.141421...
	values := []float64{100, 110, 99}
	want := math.Sqrt(0.02) * math.Sqrt(12) * 100

	got := Volatility(values, MonthsPerYear)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "monotonic up", values: []float64{1, 2, 3}, want: 0},
		{name: "single dip", values: []float64{100, 80, 120}, want: -20},
		{name: "deeper later", values: []float64{100, 90, 200, 100}, want: -50},
		{name: "leading zeros ignored", values: []float64{0, 0, 100, 75}, want: -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.values)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestCAGR(t *testing.T) {
	// Doubling over one year
	got := CAGR(100, 200, 1)
	if got == nil || math.Abs(*got-100) > 1e-9 {
		t.Errorf("expected 100, got %v", got)
	}

	// Flat
	got = CAGR(100000, 100000, 1)
	if got == nil || *got != 0 {
		t.Errorf("expected 0, got %v", got)
	}

	if CAGR(0, 100, 1) != nil {
		t.Error("expected nil when nothing invested")
	}

	got = CAGR(100, 0, 2)
	if got == nil || *got != -100 {
		t.Errorf("expected -100 for total loss, got %v", got)
	}
}

func TestAverageDividendYield(t *testing.T) {
	if AverageDividendYield(0, 1000, 1) != nil {
		t.Error("expected nil for zero dividends")
	}
	if AverageDividendYield(50, 0, 1) != nil {
		t.Error("expected nil for zero invested")
	}

	got := AverageDividendYield(100, 1000, 2)
	if got == nil || math.Abs(*got-5) > 1e-9 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestDownsideCapture_MeanOfDownRatios(t *testing.T) {
	portfolio := []float64{100, 95, 95, 90.25}
	benchmark := []float64{100, 90, 99, 89.1}
	// Down periods: 1 (-5% vs -10%) and 3 (-5% vs -10%) → ratio 0.5 each

	got := DownsideCapture(portfolio, benchmark, nil, nil)
	if got == nil || math.Abs(*got-50) > 1e-9 {
		t.Errorf("expected 50, got %v", got)
	}
}

func TestDownsideCapture_TotalReturnFallback(t *testing.T) {
	portfolio := []float64{100, 101}
	benchmark := []float64{100, 100}

	port := -4.0
	bench := -8.0
	got := DownsideCapture(portfolio, benchmark, &port, &bench)
	if got == nil || math.Abs(*got-50) > 1e-9 {
		t.Errorf("expected 50, got %v", got)
	}

	positive := 3.0
	if DownsideCapture(portfolio, benchmark, &port, &positive) != nil {
		t.Error("expected nil when benchmark total is not negative")
	}
}
