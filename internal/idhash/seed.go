package idhash

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"robo-advisor-lab/internal/domain"
)

// seedFromString takes the first 8 bytes of SHA256(data) as a big-endian uint64.
func seedFromString(data string) uint64 {
	hash := sha256.Sum256([]byte(data))
	return binary.BigEndian.Uint64(hash[:8])
}

// ComputeSimulationSeed derives the portfolio walk seed.
// Formula: SHA256(user_id-investment_mode-months-start_date)[:8]
// An empty userID is valid and seeds anonymous projections.
func ComputeSimulationSeed(userID string, mode domain.InvestmentMode, months int, start time.Time) uint64 {
	data := fmt.Sprintf("%s-%s-%d-%s",
		userID,
		string(mode),
		months,
		start.Format(domain.DateLayout),
	)
	return seedFromString(data)
}

// ComputeBenchmarkSeed derives the benchmark walk seed.
// Formula: SHA256(benchmark-symbol-months-start_date)[:8]
func ComputeBenchmarkSeed(symbol string, months int, start time.Time) uint64 {
	data := fmt.Sprintf("benchmark-%s-%d-%s",
		symbol,
		months,
		start.Format(domain.DateLayout),
	)
	return seedFromString(data)
}

// ComputeInflationSeed derives the mock inflation feed seed.
// Formula: SHA256(from:to)[:8]
func ComputeInflationSeed(from, to time.Time) uint64 {
	data := fmt.Sprintf("%s:%s",
		from.Format(domain.DateLayout),
		to.Format(domain.DateLayout),
	)
	return seedFromString(data)
}
