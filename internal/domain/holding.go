package domain

// Holding is a user's position in one instrument.
// Corresponds to the holdings table in PostgreSQL.
type Holding struct {
	UserID   string  // owning user
	Symbol   string  // instrument symbol
	Quantity float64 // units held, >= 0
	AvgPrice float64 // average cost price; display only, never used by the simulator
}

// HoldingSet maps symbol to units held at the start of a simulation window.
type HoldingSet map[string]float64

// NewHoldingSet collapses holdings into a HoldingSet, summing duplicate symbols
// and dropping negative quantities.
func NewHoldingSet(holdings []*Holding) HoldingSet {
	set := make(HoldingSet, len(holdings))
	for _, h := range holdings {
		if h == nil || h.Symbol == "" || h.Quantity < 0 {
			continue
		}
		set[h.Symbol] += h.Quantity
	}
	return set
}
