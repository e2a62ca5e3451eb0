// Package schedule decides on which dates recurring contributions are injected.
package schedule

import (
	"time"

	"robo-advisor-lab/internal/domain"
)

// MonthlyAxis returns months dates, the first day of each month from start.
func MonthlyAxis(start time.Time, months int) []time.Time {
	if months <= 0 {
		return nil
	}
	first := domain.FirstOfMonth(start)
	axis := make([]time.Time, months)
	for i := range axis {
		axis[i] = first.AddDate(0, i, 0)
	}
	return axis
}

// Schedule returns the contribution events for cadence on axis.
// The axis must be in ascending order. Each event lands on the first axis date
// of its calendar month. amount <= 0 yields no events.
//
//   - monthly: every calendar month present on the axis
//   - quarterly: every third month counted from the axis's first month
//   - annual: the anchor month, or the axis's first month when no anchor is set
func Schedule(axis []time.Time, cadence domain.Cadence, amount float64) []domain.ContributionEvent {
	if amount <= 0 || len(axis) == 0 {
		return nil
	}

	startIdx := domain.MonthIndex(axis[0])
	target, hasAnchor := cadence.AnchorMonth()
	if !hasAnchor {
		target = axis[0].Month()
	}

	var events []domain.ContributionEvent
	lastMonth := startIdx - 1
	for _, d := range axis {
		idx := domain.MonthIndex(d)
		if idx == lastMonth {
			continue
		}
		lastMonth = idx

		var fire bool
		switch cadence.Kind() {
		case domain.CadenceQuarterly:
			fire = (idx-startIdx)%3 == 0
		case domain.CadenceAnnual:
			fire = d.Month() == target
		default:
			fire = true
		}
		if fire {
			events = append(events, domain.ContributionEvent{Date: d, Amount: amount})
		}
	}
	return events
}

// ByDate indexes events by calendar date, summing events on the same day.
func ByDate(events []domain.ContributionEvent) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(events))
	for _, e := range events {
		out[domain.Day(e.Date)] += e.Amount
	}
	return out
}
