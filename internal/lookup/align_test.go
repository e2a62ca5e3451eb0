package lookup

import (
	"errors"
	"math"
	"testing"
	"time"

	"robo-advisor-lab/internal/domain"
)

func TestAlign_UnionAndForwardFill(t *testing.T) {
	series := map[string][]*domain.PricePoint{
		"B": {
			{Symbol: "B", Date: day(2), Close: 20, Dividend: 0.5},
			{Symbol: "B", Date: day(4), Close: 22},
		},
		"A": {
			{Symbol: "A", Date: day(1), Close: 10},
			{Symbol: "A", Date: day(3), Close: 11, Dividend: 0.2},
		},
	}

	table, err := Align(series, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", table.Len())
	}
	if table.Symbols[0] != "A" || table.Symbols[1] != "B" {
		t.Errorf("expected sorted symbols [A B], got %v", table.Symbols)
	}

	// B has no price before its first row.
	if _, ok := table.Price("B", 0); ok {
		t.Error("expected no price for B on first date")
	}
	if p, ok := table.Price("B", 2); !ok || p != 20 {
		t.Errorf("expected forward-filled 20, got %f (%v)", p, ok)
	}
	if p, ok := table.Price("A", 3); !ok || p != 11 {
		t.Errorf("expected forward-filled 11, got %f (%v)", p, ok)
	}

	// Dividends are never forward-filled.
	if d := table.Dividend("B", 1); d != 0.5 {
		t.Errorf("expected dividend 0.5, got %f", d)
	}
	if d := table.Dividend("B", 2); d != 0 {
		t.Errorf("expected no dividend on day 3, got %f", d)
	}
	if d := table.Dividend("A", 2); d != 0.2 {
		t.Errorf("expected dividend 0.2, got %f", d)
	}

	if p, ok := table.LatestPrice("B"); !ok || p != 22 {
		t.Errorf("expected latest 22, got %f (%v)", p, ok)
	}
}

func TestAlign_DateRange(t *testing.T) {
	series := map[string][]*domain.PricePoint{
		"A": {
			{Date: day(1), Close: 10},
			{Date: day(2), Close: 11},
			{Date: day(3), Close: 12},
		},
		"B": {
			{Date: day(10), Close: 5},
		},
	}

	table, err := Align(series, day(2), day(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Len())
	}
	if len(table.Symbols) != 1 {
		t.Errorf("expected B dropped, got %v", table.Symbols)
	}
}

func TestAlign_Empty(t *testing.T) {
	table, err := Align(map[string][]*domain.PricePoint{"A": nil}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d rows", table.Len())
	}
	if _, ok := table.LatestPrice("A"); ok {
		t.Error("expected no latest price on empty table")
	}
}

func TestAlign_MalformedSeries(t *testing.T) {
	tests := []struct {
		name string
		rows []*domain.PricePoint
	}{
		{name: "zero close", rows: []*domain.PricePoint{{Date: day(1), Close: 0}}},
		{name: "nan close", rows: []*domain.PricePoint{{Date: day(1), Close: math.NaN()}}},
		{name: "negative dividend", rows: []*domain.PricePoint{{Date: day(1), Close: 1, Dividend: -1}}},
		{name: "duplicate date", rows: []*domain.PricePoint{{Date: day(1), Close: 1}, {Date: day(1), Close: 2}}},
		{name: "unordered", rows: []*domain.PricePoint{{Date: day(2), Close: 1}, {Date: day(1), Close: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Align(map[string][]*domain.PricePoint{"X": tt.rows}, time.Time{}, time.Time{})
			if !errors.Is(err, ErrMalformedSeries) {
				t.Errorf("expected ErrMalformedSeries, got %v", err)
			}
		})
	}
}
