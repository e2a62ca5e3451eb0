package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// DefaultDividendYieldPct is the projection yield when no holding has a usable yield.
const DefaultDividendYieldPct = 3.5

// WeightedDividendYield estimates a portfolio's annual dividend yield in percent,
// weighting each holding's yield by its value at the latest close.
// A holding's yield is the instrument's static yield; when that is missing or
// zero it is the trailing 12-month dividends up to the latest close over that
// close. A known zero yield with no trailing dividends counts as 0%; a holding
// with no yield at all is left out.
func WeightedDividendYield(
	ctx context.Context,
	holdings []*domain.Holding,
	instruments storage.InstrumentStore,
	prices storage.PriceStore,
) (float64, error) {
	var weighted, total float64

	set := domain.NewHoldingSet(holdings)
	symbols := make([]string, 0, len(set))
	for symbol := range set {
		symbols = append(symbols, symbol)
	}
	// fixed order keeps the float sum reproducible
	sort.Strings(symbols)

	for _, symbol := range symbols {
		qty := set[symbol]
		if qty <= 0 {
			continue
		}
		latest, err := prices.GetLatest(ctx, symbol)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("load latest price for %s: %w", symbol, err)
		}
		value := qty * latest.Close
		if value <= 0 {
			continue
		}

		yield, ok, err := instrumentYield(ctx, instruments, symbol)
		if err != nil {
			return 0, err
		}
		if !ok || yield == 0 {
			asOf := domain.Day(latest.Date)
			divs, err := prices.GetTrailingDividends(ctx, symbol, asOf.AddDate(-1, 0, 0), asOf)
			if err != nil {
				return 0, fmt.Errorf("load trailing dividends for %s: %w", symbol, err)
			}
			if divs > 0 {
				yield, ok = divs/latest.Close*100, true
			}
		}
		if !ok {
			continue
		}

		weighted += yield * value
		total += value
	}

	if total <= 0 {
		return DefaultDividendYieldPct, nil
	}
	return weighted / total, nil
}

func instrumentYield(ctx context.Context, instruments storage.InstrumentStore, symbol string) (float64, bool, error) {
	if instruments == nil {
		return 0, false, nil
	}
	inst, err := instruments.GetBySymbol(ctx, symbol)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load instrument %s: %w", symbol, err)
	}
	if inst.DividendYield == nil {
		return 0, false, nil
	}
	yield, ok := domain.NormalizeDividendYield(*inst.DividendYield)
	return yield, ok, nil
}
