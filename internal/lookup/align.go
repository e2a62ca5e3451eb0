package lookup

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"robo-advisor-lab/internal/domain"
)

// ErrMalformedSeries is returned for a series that breaks the price source
// contract: non-positive or non-finite close, negative dividend, or dates that
// are not strictly increasing.
var ErrMalformedSeries = errors.New("malformed price series")

// Table is an aligned price/dividend table.
// Rows are the union of all symbols' dates in ascending order. Closes are
// forward-filled per symbol; a symbol has no valid price before its first row.
// Dividends are only present on the exact date they were paid.
type Table struct {
	Dates   []time.Time
	Symbols []string // sorted

	closes    map[string][]float64 // 0 means no valid price
	dividends map[string][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Dates)
}

// Price returns the forward-filled close for symbol at row i.
func (t *Table) Price(symbol string, i int) (float64, bool) {
	col, ok := t.closes[symbol]
	if !ok || i < 0 || i >= len(col) || col[i] <= 0 {
		return 0, false
	}
	return col[i], true
}

// Dividend returns the dividend per unit paid by symbol at row i.
func (t *Table) Dividend(symbol string, i int) float64 {
	col, ok := t.dividends[symbol]
	if !ok || i < 0 || i >= len(col) {
		return 0
	}
	return col[i]
}

// LatestPrice returns the last valid close for symbol.
func (t *Table) LatestPrice(symbol string) (float64, bool) {
	return t.Price(symbol, t.Len()-1)
}

// Align merges per-symbol series into a Table restricted to [from, to].
// A zero from or to leaves that side unbounded. Symbols with no rows in range
// are omitted. Any malformed series aborts the whole alignment.
func Align(series map[string][]*domain.PricePoint, from, to time.Time) (*Table, error) {
	filtered := make(map[string][]*domain.PricePoint, len(series))
	dateSet := make(map[time.Time]struct{})

	for symbol, rows := range series {
		if err := validateSeries(symbol, rows); err != nil {
			return nil, err
		}
		var kept []*domain.PricePoint
		for _, p := range rows {
			d := domain.Day(p.Date)
			if !from.IsZero() && d.Before(from) {
				continue
			}
			if !to.IsZero() && d.After(to) {
				continue
			}
			kept = append(kept, p)
			dateSet[d] = struct{}{}
		}
		if len(kept) > 0 {
			filtered[symbol] = kept
		}
	}

	t := &Table{
		Dates:     make([]time.Time, 0, len(dateSet)),
		Symbols:   make([]string, 0, len(filtered)),
		closes:    make(map[string][]float64, len(filtered)),
		dividends: make(map[string][]float64, len(filtered)),
	}
	for d := range dateSet {
		t.Dates = append(t.Dates, d)
	}
	sort.Slice(t.Dates, func(i, j int) bool { return t.Dates[i].Before(t.Dates[j]) })

	for symbol := range filtered {
		t.Symbols = append(t.Symbols, symbol)
	}
	sort.Strings(t.Symbols)

	for _, symbol := range t.Symbols {
		rows := filtered[symbol]
		closes := make([]float64, len(t.Dates))
		divs := make([]float64, len(t.Dates))

		j := 0
		last := 0.0
		for i, d := range t.Dates {
			if j < len(rows) && domain.Day(rows[j].Date).Equal(d) {
				last = rows[j].Close
				divs[i] = rows[j].Dividend
				j++
			}
			closes[i] = last
		}

		t.closes[symbol] = closes
		t.dividends[symbol] = divs
	}

	return t, nil
}

func validateSeries(symbol string, rows []*domain.PricePoint) error {
	var prev time.Time
	for i, p := range rows {
		if p == nil {
			return fmt.Errorf("%w: %s row %d is nil", ErrMalformedSeries, symbol, i)
		}
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return fmt.Errorf("%w: %s close %v on %s", ErrMalformedSeries, symbol, p.Close, p.Date.Format(domain.DateLayout))
		}
		if p.Dividend < 0 || math.IsNaN(p.Dividend) || math.IsInf(p.Dividend, 0) {
			return fmt.Errorf("%w: %s dividend %v on %s", ErrMalformedSeries, symbol, p.Dividend, p.Date.Format(domain.DateLayout))
		}
		d := domain.Day(p.Date)
		if i > 0 && !d.After(prev) {
			return fmt.Errorf("%w: %s dates not strictly increasing at %s", ErrMalformedSeries, symbol, d.Format(domain.DateLayout))
		}
		prev = d
	}
	return nil
}
