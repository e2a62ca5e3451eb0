package domain

// Instrument is a tradable security available to model portfolios.
// Corresponds to the instruments table in PostgreSQL.
type Instrument struct {
	Symbol        string   // unique ticker, e.g. STXDIV.JO
	Name          string   // display name
	DividendYield *float64 // static yield; fraction (<= 1) or percent (> 1), nil if unknown
}

// NormalizeDividendYield expresses a raw yield as a percentage.
// Values at or below 1 are treated as fractions. Negative values yield false.
func NormalizeDividendYield(raw float64) (float64, bool) {
	if raw < 0 {
		return 0, false
	}
	if raw <= 1 {
		return raw * 100, true
	}
	return raw, true
}
