package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Annualisation factors for Volatility.
const (
	TradingDaysPerYear = 252
	MonthsPerYear      = 12
	DaysPerYear        = 365.25
)

// PeriodReturns returns the simple return between consecutive values.
// A return whose previous value is not positive is NaN.
func PeriodReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev <= 0 {
			out[i-1] = math.NaN()
			continue
		}
		out[i-1] = values[i]/prev - 1
	}
	return out
}

// Volatility returns the annualised sample standard deviation of period
// returns, in percent. Fewer than two usable returns gives 0.
func Volatility(values []float64, periodsPerYear float64) float64 {
	returns := finite(PeriodReturns(values))
	if len(returns) < 2 {
		return 0
	}
	sd := stat.StdDev(returns, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(periodsPerYear) * 100
}

// MaxDrawdown returns the deepest fall from a running peak, in percent (<= 0).
// Points before the first positive peak are ignored.
func MaxDrawdown(values []float64) float64 {
	peak := 0.0
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst * 100
}

// CAGR returns the compound annual growth rate from invested to ending over
// years, in percent. Undefined (nil) when invested or years is not positive;
// a non-positive ending value is a total loss (-100).
func CAGR(invested, ending, years float64) *float64 {
	if invested <= 0 || years <= 0 {
		return nil
	}
	if ending <= 0 {
		v := -100.0
		return &v
	}
	v := (math.Pow(ending/invested, 1/years) - 1) * 100
	return finitePtr(v)
}

// TotalReturnPct returns (ending - base) / base in percent, nil when base <= 0.
func TotalReturnPct(base, ending float64) *float64 {
	if base <= 0 {
		return nil
	}
	return finitePtr((ending - base) / base * 100)
}

// AverageDividendYield returns dividends / invested / years in percent.
// Undefined when no dividends were generated or the denominator is zero.
func AverageDividendYield(dividends, invested, years float64) *float64 {
	if dividends == 0 || invested <= 0 || years <= 0 {
		return nil
	}
	return finitePtr(dividends / invested / years * 100)
}

// DownsideCapture compares portfolio and benchmark moves on benchmark-down
// periods. portfolio and benchmark must be aligned on the same dates.
//
// The result is the mean of portfolioReturn/benchmarkReturn over periods where
// the benchmark fell, in percent. Without such periods it falls back to
// portfolioTotalPct/benchmarkTotalPct when the benchmark total is negative,
// and is otherwise undefined.
func DownsideCapture(portfolio, benchmark []float64, portfolioTotalPct, benchmarkTotalPct *float64) *float64 {
	pr := PeriodReturns(portfolio)
	br := PeriodReturns(benchmark)
	n := len(pr)
	if len(br) < n {
		n = len(br)
	}

	var ratios []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(br[i]) || math.IsNaN(pr[i]) || br[i] >= 0 {
			continue
		}
		r := pr[i] / br[i]
		if math.IsInf(r, 0) || math.IsNaN(r) {
			continue
		}
		ratios = append(ratios, r)
	}
	if len(ratios) > 0 {
		return finitePtr(stat.Mean(ratios, nil) * 100)
	}

	if portfolioTotalPct != nil && benchmarkTotalPct != nil && *benchmarkTotalPct < 0 {
		return finitePtr(*portfolioTotalPct / *benchmarkTotalPct * 100)
	}
	return nil
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
