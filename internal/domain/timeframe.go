package domain

import (
	"fmt"
	"time"
)

// Timeframe keys accepted by ResolveTimeframe.
const (
	Timeframe1Y     = "1y"
	Timeframe3Y     = "3y"
	Timeframe5Y     = "5y"
	TimeframeCustom = "custom"
)

const (
	defaultTimeframeMonths = 60
	maxCustomMonths        = 360
)

var timeframeMonths = map[string]int{
	Timeframe1Y: 12,
	Timeframe3Y: 36,
	Timeframe5Y: 60,
}

// Timeframe is a resolved simulation window.
type Timeframe struct {
	Key    string    // requested key (1y, 3y, 5y, custom, or anything else)
	Months int       // number of monthly steps, >= 1
	Start  time.Time // first day of the start month
	End    time.Time // inclusive end date
}

// Label returns the key for known timeframes and "{months}m" otherwise.
func (t Timeframe) Label() string {
	switch t.Key {
	case Timeframe1Y, Timeframe3Y, Timeframe5Y, TimeframeCustom:
		return t.Key
	}
	return fmt.Sprintf("%dm", t.Months)
}

// ResolveTimeframe turns a timeframe key into a concrete window ending today.
// For "custom", an explicit start/end pair wins over customMonths; customMonths
// is clamped to 1..360 and defaults to 60. Unknown keys resolve to 60 months.
func ResolveTimeframe(key string, customMonths int, customStart, customEnd *time.Time, today time.Time) Timeframe {
	today = Day(today)

	if key == TimeframeCustom && customStart != nil && customEnd != nil {
		start := Day(*customStart)
		end := Day(*customEnd)
		if !end.After(start) {
			end = start.AddDate(0, 1, 0)
		}
		months := MonthIndex(end) - MonthIndex(start) + 1
		if months < 1 {
			months = 1
		}
		return Timeframe{Key: key, Months: months, Start: FirstOfMonth(start), End: end}
	}

	months, ok := timeframeMonths[key]
	if key == TimeframeCustom {
		months = customMonths
		if months == 0 {
			months = defaultTimeframeMonths
		}
		if months < 1 {
			months = 1
		}
		if months > maxCustomMonths {
			months = maxCustomMonths
		}
	} else if !ok {
		months = defaultTimeframeMonths
	}

	start := FirstOfMonth(today).AddDate(0, -(months - 1), 0)
	return Timeframe{Key: key, Months: months, Start: start, End: today}
}
