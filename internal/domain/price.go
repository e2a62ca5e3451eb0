package domain

import "time"

// DateLayout is the calendar-date format used for series points and request payloads.
const DateLayout = "2006-01-02"

// PricePoint is one trading day for one instrument.
// Corresponds to the prices table in ClickHouse.
type PricePoint struct {
	Symbol   string    // instrument symbol, e.g. STX40.JO
	Date     time.Time // trading date, UTC midnight
	Close    float64   // closing price, > 0
	Dividend float64   // dividend per unit paid on Date, >= 0
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns the first calendar day of t's month (UTC).
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// MonthIndex returns a monotonically increasing month counter (year*12 + month-1).
func MonthIndex(t time.Time) int {
	y, m, _ := t.UTC().Date()
	return y*12 + int(m) - 1
}
