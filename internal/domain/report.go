package domain

import (
	"encoding/json"
	"time"
)

// ReportSource tells which engine produced a report.
type ReportSource string

const (
	SourceHistorical ReportSource = "historical"
	SourceStochastic ReportSource = "stochastic"
)

// String returns the string representation of ReportSource.
func (s ReportSource) String() string {
	return string(s)
}

// IsValid checks if the source is a valid value.
func (s ReportSource) IsValid() bool {
	return s == SourceHistorical || s == SourceStochastic
}

// ValuePoint is one observation of a value series.
type ValuePoint struct {
	Date  time.Time
	Value float64
}

// MarshalJSON renders the point as {"date": "YYYY-MM-DD", "value": v}.
func (p ValuePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}{p.Date.Format(DateLayout), p.Value})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *ValuePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}
	p.Date = d
	p.Value = raw.Value
	return nil
}

// BenchmarkStats holds the reference index statistics of a report.
// Nil fields are undefined for the given input (e.g. a zero first value).
type BenchmarkStats struct {
	Symbol               string       `json:"symbol"`
	Label                string       `json:"label"`
	Series               []ValuePoint `json:"series"`
	TotalReturnPct       *float64     `json:"total_return_pct"`
	CAGR                 *float64     `json:"cagr"`
	Volatility           *float64     `json:"volatility"`
	MaxDrawdown          *float64     `json:"max_drawdown"`
	TotalDividends       *float64     `json:"total_dividends"`
	AverageDividendYield *float64     `json:"average_dividend_yield"`
}

// PerformanceReport is the output contract of both engines.
// Percentages are expressed in percent (12.5 means 12.5%). Pointer fields are
// nil when the statistic is arithmetically undefined for the run.
type PerformanceReport struct {
	RunID  string       `json:"run_id,omitempty"`
	UserID string       `json:"user_id,omitempty"`
	Source ReportSource `json:"source"`

	// Series is holdings market value plus uninvested cash, per date.
	// Dividends paid out under cash_out are never part of it.
	Series          []ValuePoint     `json:"series"`
	SeriesReal      []ValuePoint     `json:"series_real"`
	InflationSeries []InflationPoint `json:"inflation_series"`

	TotalInvested       float64  `json:"total_invested"`
	EndingValue         float64  `json:"ending_value"`          // last series value + dividends paid out
	EndingValueHoldings float64  `json:"ending_value_holdings"` // last series value
	TotalReturn         float64  `json:"total_return"`
	TotalReturnPct      *float64 `json:"total_return_pct"`
	CAGR                *float64 `json:"cagr"`
	Volatility          float64  `json:"volatility"`
	MaxDrawdown         float64  `json:"max_drawdown"`

	Months    int       `json:"months"`
	Timeframe string    `json:"timeframe"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	InvestmentMode        InvestmentMode     `json:"investment_mode"`
	DistributionPolicy    DistributionPolicy `json:"distribution_policy"`
	ContributionFrequency CadenceKind        `json:"contribution_frequency"`
	AnnualMonth           *int               `json:"annual_month"`

	AverageDividendYield *float64 `json:"average_dividend_yield"`
	TotalDividends       float64  `json:"total_dividends"`
	DividendsDistributed float64  `json:"dividends_distributed"`
	UninvestedCash       float64  `json:"uninvested_cash"`

	InflationAdjusted        bool     `json:"inflation_adjusted"`
	TotalReturnReal          *float64 `json:"total_return_real"`
	CAGRReal                 *float64 `json:"annual_return_real"`
	RealDividendsDistributed *float64 `json:"real_dividends_distributed"`

	Benchmark       *BenchmarkStats `json:"benchmark,omitempty"`
	DownsideCapture *float64        `json:"downside_capture"`
}

// Comparison pairs a baseline run with an optional contribution scenario.
type Comparison struct {
	Baseline *PerformanceReport `json:"baseline"`
	Scenario *PerformanceReport `json:"scenario"`
}

// ReportRecord is a persisted report.
// Corresponds to the simulation_reports table in PostgreSQL.
type ReportRecord struct {
	RunID     string             // deterministic hash of the normalised request
	UserID    string             // empty for anonymous projections
	Source    ReportSource       // engine that produced the report
	CreatedAt time.Time          // insertion time
	Report    *PerformanceReport // full report payload
}
