// Package goal solves savings targets against an assumed annual return and
// builds growth, balanced and income plans on top of the solvers.
package goal

import "math"

// monthlyRate converts an annual percentage return into the equivalent
// monthly compounding rate. Negative returns are floored at zero.
func monthlyRate(annualReturnPct float64) float64 {
	rate := math.Max(annualReturnPct/100, 0)
	if rate <= 0 {
		return 0
	}
	return math.Pow(1+rate, 1.0/12) - 1
}

// RequiredMonthlyContribution returns the end-of-month payment that grows
// current into target over termYears at annualReturnPct.
// It returns 0 when the target is already met or not positive. Without a
// positive rate the gap is spread linearly over the term.
func RequiredMonthlyContribution(target, current, annualReturnPct, termYears float64) float64 {
	if target <= 0 || current >= target {
		return 0
	}
	months := max(int(termYears*12), 1)

	r := monthlyRate(annualReturnPct)
	if r <= 0 {
		return math.Max((target-current)/float64(months), 0)
	}

	factor := math.Pow(1+r, float64(months))
	numerator := target - current*factor
	if numerator <= 0 {
		return 0
	}
	denominator := factor - 1
	if denominator == 0 {
		return 0
	}
	return math.Max(numerator*r/denominator, 0)
}

// MonthsToReachTarget returns how many months a monthly budget needs to grow
// current into target at annualReturnPct. ok is false when the budget is not
// positive or can never close the gap.
func MonthsToReachTarget(budget, target, current, annualReturnPct float64) (months float64, ok bool) {
	if budget <= 0 {
		return 0, false
	}
	if current >= target {
		return 0, true
	}

	r := monthlyRate(annualReturnPct)
	if r <= 0 {
		return math.Max((target-current)/budget, 0), true
	}

	numerator := budget + r*target
	denominator := budget + r*current
	if denominator <= 0 || numerator <= denominator {
		return 0, false
	}
	return math.Max(math.Log(numerator/denominator)/math.Log1p(r), 0), true
}
