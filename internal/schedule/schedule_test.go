package schedule

import (
	"testing"
	"time"

	"robo-advisor-lab/internal/domain"
)

var jan2020 = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestSchedule_QuarterlyOn24MonthAxis(t *testing.T) {
	axis := MonthlyAxis(jan2020, 24)

	events := Schedule(axis, domain.QuarterlyCadence(), 1000)

	if len(events) != 8 {
		t.Fatalf("expected 8 events, got %d", len(events))
	}
	wantMonths := []int{1, 4, 7, 10, 13, 16, 19, 22}
	for i, e := range events {
		// 1-indexed month position on the axis
		pos := domain.MonthIndex(e.Date) - domain.MonthIndex(jan2020) + 1
		if pos != wantMonths[i] {
			t.Errorf("event %d: expected month %d, got %d", i, wantMonths[i], pos)
		}
		if e.Amount != 1000 {
			t.Errorf("event %d: expected amount 1000, got %f", i, e.Amount)
		}
	}
}

func TestSchedule_MonthlyUsesFirstDateOfEachMonth(t *testing.T) {
	axis := []time.Time{
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	events := Schedule(axis, domain.MonthlyCadence(), 50)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if !events[0].Date.Equal(axis[0]) || !events[1].Date.Equal(axis[2]) || !events[2].Date.Equal(axis[4]) {
		t.Errorf("unexpected event dates: %v", events)
	}
}

func TestSchedule_QuarterlyCountsCalendarMonthsNotAxisPositions(t *testing.T) {
	// March is missing from the axis; April is still three months after January.
	axis := []time.Time{
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	events := Schedule(axis, domain.QuarterlyCadence(), 10)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Date.Month() != time.April {
		t.Errorf("expected April, got %s", events[1].Date.Month())
	}
}

func TestSchedule_Annual(t *testing.T) {
	axis := MonthlyAxis(jan2020, 36)

	anchored := Schedule(axis, domain.AnnualCadence(3), 100)
	if len(anchored) != 3 {
		t.Fatalf("expected 3 events, got %d", len(anchored))
	}
	for _, e := range anchored {
		if e.Date.Month() != time.March {
			t.Errorf("expected March, got %s", e.Date.Month())
		}
	}

	// No anchor uses the axis start month.
	unanchored := Schedule(axis, domain.AnnualCadence(0), 100)
	if len(unanchored) != 3 || unanchored[0].Date.Month() != time.January {
		t.Errorf("expected 3 January events, got %v", unanchored)
	}
}

func TestSchedule_AnnualAnchorNeverVisited(t *testing.T) {
	axis := MonthlyAxis(jan2020, 4)

	events := Schedule(axis, domain.AnnualCadence(9), 100)

	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}

func TestSchedule_NonPositiveAmount(t *testing.T) {
	axis := MonthlyAxis(jan2020, 12)

	if events := Schedule(axis, domain.MonthlyCadence(), 0); len(events) != 0 {
		t.Errorf("expected no events for zero amount, got %d", len(events))
	}
	if events := Schedule(axis, domain.MonthlyCadence(), -5); len(events) != 0 {
		t.Errorf("expected no events for negative amount, got %d", len(events))
	}
}

func TestMonthlyAxis(t *testing.T) {
	axis := MonthlyAxis(time.Date(2021, 11, 17, 0, 0, 0, 0, time.UTC), 3)

	if len(axis) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(axis))
	}
	want := []time.Time{
		time.Date(2021, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !axis[i].Equal(want[i]) {
			t.Errorf("date %d: expected %s, got %s", i, want[i], axis[i])
		}
	}

	if MonthlyAxis(jan2020, 0) != nil {
		t.Error("expected nil axis for zero months")
	}
}

func TestByDate(t *testing.T) {
	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got := ByDate([]domain.ContributionEvent{{Date: d, Amount: 5}, {Date: d, Amount: 7}})
	if got[d] != 12 {
		t.Errorf("expected 12, got %f", got[d])
	}
}
