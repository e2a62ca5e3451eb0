package ingestion

import (
	"errors"
	"sort"

	"robo-advisor-lab/internal/domain"
)

// ErrInvalidOrdering is returned when rows are not in (symbol, date) order
// or repeat a key.
var ErrInvalidOrdering = errors.New("invalid ordering")

// SortPrices sorts price rows by (symbol, date) ASC.
func SortPrices(points []*domain.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return comparePrices(points[i], points[j]) < 0
	})
}

// SortInflation sorts inflation rows by date ASC.
func SortInflation(points []*domain.InflationPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}

// ValidatePriceOrdering checks rows are strictly increasing by (symbol, date).
func ValidatePriceOrdering(points []*domain.PricePoint) error {
	for i := 1; i < len(points); i++ {
		if comparePrices(points[i-1], points[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// GroupBySymbol splits sorted rows into per-symbol runs, preserving order.
func GroupBySymbol(points []*domain.PricePoint) [][]*domain.PricePoint {
	var groups [][]*domain.PricePoint
	start := 0
	for i := 1; i <= len(points); i++ {
		if i == len(points) || points[i].Symbol != points[start].Symbol {
			groups = append(groups, points[start:i])
			start = i
		}
	}
	return groups
}

func comparePrices(a, b *domain.PricePoint) int {
	if a.Symbol != b.Symbol {
		if a.Symbol < b.Symbol {
			return -1
		}
		return 1
	}
	da, db := domain.Day(a.Date), domain.Day(b.Date)
	switch {
	case da.Before(db):
		return -1
	case da.After(db):
		return 1
	}
	return 0
}
