package reporting

import (
	"fmt"
	"strings"
	"time"

	"robo-advisor-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	p := r.Performance

	// Header
	sb.WriteString("# Portfolio Performance Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	}
	user := r.UserID
	if user == "" {
		user = "anonymous"
	}
	sb.WriteString(fmt.Sprintf("User: %s | Source: %s | Timeframe: %s (%d months, %s to %s)\n\n",
		user, p.Source, p.Timeframe, p.Months,
		p.StartDate.Format(domain.DateLayout), p.EndDate.Format(domain.DateLayout)))

	// Contributions
	sb.WriteString("## Contributions\n\n")
	sb.WriteString("| Setting | Value |\n")
	sb.WriteString("|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Investment Mode | %s |\n", p.InvestmentMode))
	sb.WriteString(fmt.Sprintf("| Contribution Frequency | %s |\n", cadenceLabel(p)))
	sb.WriteString(fmt.Sprintf("| Distribution Policy | %s |\n", p.DistributionPolicy))
	sb.WriteString(fmt.Sprintf("| Total Invested | %.2f |\n", p.TotalInvested))
	sb.WriteString("\n")

	// Performance
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Ending Value | %.2f |\n", p.EndingValue))
	sb.WriteString(fmt.Sprintf("| Ending Holdings Value | %.2f |\n", p.EndingValueHoldings))
	sb.WriteString(fmt.Sprintf("| Total Return | %.2f |\n", p.TotalReturn))
	sb.WriteString(fmt.Sprintf("| Total Return %% | %s |\n", pct(p.TotalReturnPct)))
	sb.WriteString(fmt.Sprintf("| Annualised Return (CAGR) | %s |\n", pct(p.CAGR)))
	sb.WriteString(fmt.Sprintf("| Volatility | %.2f%% |\n", p.Volatility))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% |\n", p.MaxDrawdown))
	sb.WriteString("\n")

	// Dividends
	sb.WriteString("## Dividends\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Dividends | %.2f |\n", p.TotalDividends))
	sb.WriteString(fmt.Sprintf("| Paid Out | %.2f |\n", p.DividendsDistributed))
	sb.WriteString(fmt.Sprintf("| Average Yield | %s |\n", pct(p.AverageDividendYield)))
	if p.UninvestedCash > 0 {
		sb.WriteString(fmt.Sprintf("| Uninvested Cash | %.2f |\n", p.UninvestedCash))
	}
	sb.WriteString("\n")

	// Inflation
	if p.InflationAdjusted {
		sb.WriteString("## Inflation Adjusted\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Real Total Return | %s |\n", pct(p.TotalReturnReal)))
		sb.WriteString(fmt.Sprintf("| Real Annualised Return | %s |\n", pct(p.CAGRReal)))
		sb.WriteString(fmt.Sprintf("| Real Dividends Paid Out | %s |\n", num(p.RealDividendsDistributed)))
		sb.WriteString("\n")
	}

	// Benchmark
	if b := p.Benchmark; b != nil {
		sb.WriteString(fmt.Sprintf("## Benchmark: %s (%s)\n\n", b.Label, b.Symbol))
		sb.WriteString("| Metric | Portfolio | Benchmark |\n")
		sb.WriteString("|--------|-----------|-----------|\n")
		sb.WriteString(fmt.Sprintf("| Total Return %% | %s | %s |\n", pct(p.TotalReturnPct), pct(b.TotalReturnPct)))
		sb.WriteString(fmt.Sprintf("| CAGR | %s | %s |\n", pct(p.CAGR), pct(b.CAGR)))
		sb.WriteString(fmt.Sprintf("| Volatility | %.2f%% | %s |\n", p.Volatility, pct(b.Volatility)))
		sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% | %s |\n", p.MaxDrawdown, pct(b.MaxDrawdown)))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Downside capture: %s\n\n", num(p.DownsideCapture)))
	}

	// Monthly values
	sb.WriteString("## Monthly Values\n\n")
	if len(r.Monthly) > 0 {
		sb.WriteString("| Date | Value | Real | Benchmark |\n")
		sb.WriteString("|------|-------|------|-----------|\n")
		for _, m := range r.Monthly {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s |\n",
				m.Date.Format(domain.DateLayout), m.Value, num(m.RealValue), num(m.BenchmarkValue)))
		}
	} else {
		sb.WriteString("No values recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func cadenceLabel(p *domain.PerformanceReport) string {
	if p.ContributionFrequency == domain.CadenceAnnual && p.AnnualMonth != nil {
		return fmt.Sprintf("%s (%s)", p.ContributionFrequency, time.Month(*p.AnnualMonth))
	}
	return string(p.ContributionFrequency)
}

func pct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func num(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
