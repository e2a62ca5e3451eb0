package idhash

import (
	"testing"
	"time"

	"robo-advisor-lab/internal/domain"
)

var start = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestComputeSimulationSeed_Determinism(t *testing.T) {
	results := make([]uint64, 10)
	for i := 0; i < 10; i++ {
		results[i] = ComputeSimulationSeed("user-1", domain.ModeMonthly, 60, start)
	}

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Errorf("Determinism failed: results[%d]=%d != results[0]=%d", i, results[i], results[0])
		}
	}
}

func TestComputeSimulationSeed_DifferentInputs(t *testing.T) {
	base := ComputeSimulationSeed("user-1", domain.ModeMonthly, 60, start)

	if base == ComputeSimulationSeed("user-2", domain.ModeMonthly, 60, start) {
		t.Error("Different user should produce different seed")
	}
	if base == ComputeSimulationSeed("user-1", domain.ModeLumpSum, 60, start) {
		t.Error("Different mode should produce different seed")
	}
	if base == ComputeSimulationSeed("user-1", domain.ModeMonthly, 36, start) {
		t.Error("Different months should produce different seed")
	}
	if base == ComputeSimulationSeed("user-1", domain.ModeMonthly, 60, start.AddDate(0, 1, 0)) {
		t.Error("Different start should produce different seed")
	}
}

func TestComputeBenchmarkSeed_IndependentOfPortfolio(t *testing.T) {
	portfolio := ComputeSimulationSeed("STX40.JO", domain.ModeLumpSum, 60, start)
	bench := ComputeBenchmarkSeed("STX40.JO", 60, start)
	if portfolio == bench {
		t.Error("Benchmark seed should not collide with portfolio seed")
	}

	if ComputeBenchmarkSeed("STX40.JO", 60, start) != bench {
		t.Error("Benchmark seed not deterministic")
	}
	if ComputeBenchmarkSeed("STXDIV.JO", 60, start) == bench {
		t.Error("Different symbol should produce different seed")
	}
}

func TestComputeInflationSeed(t *testing.T) {
	end := start.AddDate(1, 0, 0)
	a := ComputeInflationSeed(start, end)
	if a != ComputeInflationSeed(start, end) {
		t.Error("Inflation seed not deterministic")
	}
	if a == ComputeInflationSeed(end, start) {
		t.Error("Swapped range should produce different seed")
	}
}
