package domain

// BenchmarkProfile parameterises the synthetic monthly walk for a benchmark index.
type BenchmarkProfile struct {
	Symbol     string  `json:"symbol"`
	Label      string  `json:"label"`
	Drift      float64 `json:"-"` // mean monthly return
	Volatility float64 `json:"-"` // monthly standard deviation
}

// Defaults for symbols without a profile.
const (
	DefaultBenchmarkDrift      = 0.005
	DefaultBenchmarkVolatility = 0.02
)

// BenchmarkProfiles lists the supported reference indices, in display order.
var BenchmarkProfiles = []BenchmarkProfile{
	{Symbol: "STX40.JO", Label: "Satrix Top 40 ETF", Drift: 0.0055, Volatility: 0.02},
	{Symbol: "STXDIV.JO", Label: "Satrix Dividend Plus ETF", Drift: 0.0045, Volatility: 0.018},
	{Symbol: "SYGWD.JO", Label: "Sygnia MSCI World ETF", Drift: 0.006, Volatility: 0.021},
	{Symbol: "STXIND.JO", Label: "Satrix Industrial ETF", Drift: 0.005, Volatility: 0.019},
	{Symbol: "STXRES.JO", Label: "Satrix Resources ETF", Drift: 0.0058, Volatility: 0.023},
	{Symbol: "GRT.JO", Label: "Growthpoint Properties", Drift: 0.0035, Volatility: 0.018},
	{Symbol: "NRP.JO", Label: "NEPI Rockcastle", Drift: 0.0038, Volatility: 0.017},
}

// LookupBenchmarkProfile returns the profile for symbol, or the default walk
// labelled with the symbol itself.
func LookupBenchmarkProfile(symbol string) BenchmarkProfile {
	for _, p := range BenchmarkProfiles {
		if p.Symbol == symbol {
			return p
		}
	}
	return BenchmarkProfile{
		Symbol:     symbol,
		Label:      symbol,
		Drift:      DefaultBenchmarkDrift,
		Volatility: DefaultBenchmarkVolatility,
	}
}
