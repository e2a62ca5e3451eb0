package reporting

import (
	"errors"
	"fmt"
	"math"

	"github.com/vicanso/go-charts/v2"

	"robo-advisor-lab/internal/domain"
)

// ErrEmptySeries is returned when a report has nothing to plot.
var ErrEmptySeries = errors.New("report has no series to plot")

// RenderChartPNG draws the month-end portfolio value as a PNG line chart, with
// the real series and the benchmark as extra lines when they cover every month.
func RenderChartPNG(r *Report) ([]byte, error) {
	if len(r.Monthly) == 0 {
		return nil, ErrEmptySeries
	}
	p := r.Performance

	labels := make([]string, len(r.Monthly))
	portfolio := make([]float64, len(r.Monthly))
	realValues := make([]float64, len(r.Monthly))
	bench := make([]float64, len(r.Monthly))
	hasReal, hasBench := p.InflationAdjusted, p.Benchmark != nil

	for i, m := range r.Monthly {
		labels[i] = m.Date.Format("Jan '06")
		portfolio[i] = m.Value
		if m.RealValue != nil {
			realValues[i] = *m.RealValue
		} else {
			hasReal = false
		}
		if m.BenchmarkValue != nil {
			bench[i] = *m.BenchmarkValue
		} else {
			hasBench = false
		}
	}

	values := [][]float64{portfolio}
	names := []string{"Portfolio"}
	if hasReal {
		values = append(values, realValues)
		names = append(names, "Real")
	}
	if hasBench {
		values = append(values, bench)
		names = append(names, p.Benchmark.Label)
	}

	yMin, yMax := valueRange(values)

	splitNum := 6
	if len(labels) <= 30 {
		splitNum = max(len(labels)/3, 3)
	}

	title := fmt.Sprintf("Portfolio value (%s, %s)", p.Timeframe, p.Source)
	subtitle := fmt.Sprintf("Return: %s | CAGR: %s | Vol: %.2f%% | MaxDD: %.2f%%",
		pct(p.TotalReturnPct), pct(p.CAGR), p.Volatility, p.MaxDrawdown)

	painter, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf, nil
}

// valueRange returns the y-axis bounds with 5% padding.
func valueRange(values [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, series := range values {
		for _, v := range series {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	padding := (hi - lo) * 0.05
	if padding == 0 {
		padding = math.Max(math.Abs(hi)*0.05, 1)
	}
	return lo - padding, hi + padding
}

// RenderReportChart is a convenience for callers holding a bare performance report.
func RenderReportChart(p *domain.PerformanceReport) ([]byte, error) {
	return RenderChartPNG(NewReport(&domain.ReportRecord{RunID: p.RunID, UserID: p.UserID, Report: p}, p.EndDate))
}
