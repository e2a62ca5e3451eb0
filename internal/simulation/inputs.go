package simulation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"robo-advisor-lab/internal/domain"
)

// inputKey fingerprints the stored rows a run reads. It becomes part of the
// run ID, so a stored report is only reused while its inputs are unchanged.
type inputKey struct {
	parts []string
}

func (k *inputKey) add(format string, args ...any) {
	k.parts = append(k.parts, fmt.Sprintf(format, args...))
}

func (k *inputKey) addInflation(points []domain.InflationPoint) {
	for _, p := range points {
		k.add("i:%s:%v", p.Date.Format(domain.DateLayout), p.RatePct)
	}
}

func (k *inputKey) String() string {
	return strings.Join(k.parts, ";")
}

// historicalKey covers the user's holdings, the price rows in range for every
// held symbol and the benchmark, and the inflation rows when deflating.
func (r *Runner) historicalKey(ctx context.Context, req domain.SimulationRequest) (string, error) {
	var key inputKey

	holdings, err := r.holdingStore.GetByUser(ctx, req.UserID)
	if err != nil {
		return "", fmt.Errorf("load holdings: %w", err)
	}
	set := domain.NewHoldingSet(holdings)
	symbols := make([]string, 0, len(set)+1)
	for symbol := range set {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		key.add("h:%s:%v", symbol, set[symbol])
	}

	if b := req.BenchmarkSymbol; b != "" {
		if _, held := set[b]; !held {
			symbols = append(symbols, b)
		}
	}
	for _, symbol := range symbols {
		rows, err := r.priceStore.GetByDateRange(ctx, symbol, req.Timeframe.Start, req.Timeframe.End)
		if err != nil {
			return "", fmt.Errorf("load prices for %s: %w", symbol, err)
		}
		if len(rows) == 0 {
			key.add("p:%s:0", symbol)
			continue
		}
		var dividends float64
		for _, row := range rows {
			dividends += row.Dividend
		}
		last := rows[len(rows)-1]
		key.add("p:%s:%d:%s:%v:%v", symbol, len(rows), last.Date.Format(domain.DateLayout), last.Close, dividends)
	}

	if req.InflationAdjust && r.inflation != nil {
		points, err := r.inflation.InflationSeries(ctx, req.Timeframe.Start, req.Timeframe.End)
		if err != nil {
			return "", fmt.Errorf("load inflation series: %w", err)
		}
		key.addInflation(points)
	}
	return key.String(), nil
}

// projectionKey covers the holdings-derived yield and the inflation rows.
// Seeds derive from the request and are already part of the run ID.
func projectionKey(in ProjectionInputs) string {
	var key inputKey
	key.add("y:%v", in.DividendYieldPct)
	key.addInflation(in.Inflation)
	return key.String()
}
