package reporting

import (
	"time"

	"robo-advisor-lab/internal/domain"
)

// Report is a rendering view of one simulation run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	UserID      string
	CreatedAt   time.Time // zero for runs that were never stored

	// Performance is the run's report rounded to 2 decimal places.
	Performance *domain.PerformanceReport

	// Monthly has one row per calendar month, taken from the month's last point.
	Monthly []MonthlyRow
}

// MonthlyRow is the month-end state of a run.
type MonthlyRow struct {
	Date           time.Time // date of the month's last point
	Value          float64
	RealValue      *float64 // nil unless the run was inflation adjusted
	BenchmarkValue *float64 // nil when the benchmark had no point that month
}

// NewReport builds a rendering view from a report record.
func NewReport(rec *domain.ReportRecord, generatedAt time.Time) *Report {
	perf := RoundReport(rec.Report)
	return &Report{
		GeneratedAt: generatedAt,
		RunID:       rec.RunID,
		UserID:      rec.UserID,
		CreatedAt:   rec.CreatedAt,
		Performance: perf,
		Monthly:     monthlyRows(perf),
	}
}

func monthlyRows(p *domain.PerformanceReport) []MonthlyRow {
	var rows []MonthlyRow
	for _, i := range monthEnds(p.Series) {
		pt := p.Series[i]
		row := MonthlyRow{Date: pt.Date, Value: pt.Value}
		if i < len(p.SeriesReal) {
			v := p.SeriesReal[i].Value
			row.RealValue = &v
		}
		rows = append(rows, row)
	}

	if p.Benchmark != nil {
		byMonth := make(map[int]float64)
		for _, i := range monthEnds(p.Benchmark.Series) {
			pt := p.Benchmark.Series[i]
			byMonth[domain.MonthIndex(pt.Date)] = pt.Value
		}
		for i := range rows {
			if v, ok := byMonth[domain.MonthIndex(rows[i].Date)]; ok {
				rows[i].BenchmarkValue = &v
			}
		}
	}
	return rows
}

// monthEnds returns the index of the last point of each calendar month.
func monthEnds(series []domain.ValuePoint) []int {
	var idx []int
	for i := range series {
		if i == len(series)-1 || domain.MonthIndex(series[i+1].Date) != domain.MonthIndex(series[i].Date) {
			idx = append(idx, i)
		}
	}
	return idx
}
