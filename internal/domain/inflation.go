package domain

import (
	"encoding/json"
	"time"
)

// InflationPoint is one monthly observation of the annualised inflation rate.
// Corresponds to the inflation table in PostgreSQL.
type InflationPoint struct {
	Date    time.Time // first day of the observed month
	RatePct float64   // annualised inflation rate for the month, in percent
}

// MarshalJSON renders the point as {"date": "YYYY-MM-DD", "inflation": rate}.
func (p InflationPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date      string  `json:"date"`
		Inflation float64 `json:"inflation"`
	}{p.Date.Format(DateLayout), p.RatePct})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *InflationPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date      string  `json:"date"`
		Inflation float64 `json:"inflation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}
	p.Date = d
	p.RatePct = raw.Inflation
	return nil
}
