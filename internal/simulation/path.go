package simulation

import (
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/lookup"
)

// unallocatedEpsilon is the smallest leftover kept as uninvested cash.
const unallocatedEpsilon = 1e-6

// PathConfig configures one walk over an aligned table.
type PathConfig struct {
	InitialUnits    domain.HoldingSet         // units held before the first date, may be nil
	LumpSum         float64                   // contributed on the first date
	Contributions   map[time.Time]float64     // scheduled amounts keyed by calendar date
	Policy          domain.DistributionPolicy // reinvest or cash_out
	FallbackWeights map[string]float64        // used while the portfolio has no market value
}

// PathResult is the outcome of a walk.
type PathResult struct {
	Series               []domain.ValuePoint // holdings value plus uninvested cash, per date
	TotalInvested        float64
	DividendsGenerated   float64
	DividendsDistributed float64 // paid out under cash_out, never part of Series
	UninvestedCash       float64
	Units                map[string]float64
}

// pathState is owned by a single SimulatePath call.
type pathState struct {
	units map[string]float64
	cash  float64
}

// SimulatePath walks table once, in date order.
// On each date it deploys the first-date lump sum and any scheduled
// contribution, then settles dividends per policy, then records the value.
// Nothing is rounded.
func SimulatePath(table *lookup.Table, cfg PathConfig) PathResult {
	state := &pathState{units: make(map[string]float64)}
	for symbol, qty := range cfg.InitialUnits {
		if qty > 0 {
			state.units[symbol] = qty
		}
	}

	res := PathResult{Series: make([]domain.ValuePoint, 0, table.Len())}

	for i, d := range table.Dates {
		contribution := cfg.Contributions[d]
		if i == 0 && cfg.LumpSum > 0 {
			contribution += cfg.LumpSum
		}
		if contribution > 0 {
			res.TotalInvested += contribution
			state.deploy(table, i, contribution, cfg.FallbackWeights)
		}

		dividendCash := 0.0
		for _, symbol := range table.Symbols {
			if units := state.units[symbol]; units > 0 {
				dividendCash += units * table.Dividend(symbol, i)
			}
		}
		if dividendCash > 0 {
			res.DividendsGenerated += dividendCash
			if cfg.Policy == domain.PolicyCashOut {
				res.DividendsDistributed += dividendCash
			} else {
				state.deploy(table, i, dividendCash, cfg.FallbackWeights)
			}
		}

		res.Series = append(res.Series, domain.ValuePoint{Date: d, Value: state.value(table, i)})
	}

	res.UninvestedCash = state.cash
	res.Units = state.units
	return res
}

// deploy converts amount into units at row i's prices.
// Weights come from current market value, else the fallback weights, else
// equal weights, always restricted to symbols with a valid price. Anything
// that cannot be placed stays as uninvested cash.
func (s *pathState) deploy(table *lookup.Table, i int, amount float64, fallback map[string]float64) {
	prices := make(map[string]float64, len(table.Symbols))
	var priced []string
	for _, symbol := range table.Symbols {
		if p, ok := table.Price(symbol, i); ok {
			prices[symbol] = p
			priced = append(priced, symbol)
		}
	}
	if len(priced) == 0 {
		s.cash += amount
		return
	}

	weights := s.marketWeights(priced, prices)
	if weights == nil {
		weights = normalise(priced, fallback)
	}
	if weights == nil {
		weights = make(map[string]float64, len(priced))
		for _, symbol := range priced {
			weights[symbol] = 1 / float64(len(priced))
		}
	}

	allocated := 0.0
	for _, symbol := range priced {
		w := weights[symbol]
		if w <= 0 {
			continue
		}
		alloc := amount * w
		s.units[symbol] += alloc / prices[symbol]
		allocated += alloc
	}

	if leftover := amount - allocated; leftover > unallocatedEpsilon {
		s.cash += leftover
	}
}

func (s *pathState) marketWeights(priced []string, prices map[string]float64) map[string]float64 {
	values := make(map[string]float64, len(priced))
	for _, symbol := range priced {
		if units := s.units[symbol]; units > 0 {
			values[symbol] = units * prices[symbol]
		}
	}
	return normalise(priced, values)
}

// normalise rescales raw weights over symbols so they sum to 1.
// Returns nil when nothing positive remains.
func normalise(symbols []string, raw map[string]float64) map[string]float64 {
	total := 0.0
	for _, symbol := range symbols {
		if w := raw[symbol]; w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return nil
	}
	out := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		if w := raw[symbol]; w > 0 {
			out[symbol] = w / total
		}
	}
	return out
}

func (s *pathState) value(table *lookup.Table, i int) float64 {
	total := s.cash
	for _, symbol := range table.Symbols {
		if units := s.units[symbol]; units > 0 {
			if p, ok := table.Price(symbol, i); ok {
				total += units * p
			}
		}
	}
	return total
}
