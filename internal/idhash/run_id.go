package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"robo-advisor-lab/internal/domain"
)

// runIDVersion is bumped whenever engine semantics change so stale cached
// reports are never reused.
const runIDVersion = "v2"

// ComputeRunID computes a deterministic run_id for a normalised request.
// inputs fingerprints the stored data the run reads (holdings, prices, yield,
// inflation); any change there yields a new run ID.
// Formula: SHA256(version|source|user|mode|initial|monthly|cadence|policy|timeframe|start|end|months|benchmark|inflation|inputs)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(req domain.SimulationRequest, source domain.ReportSource, inputs string) string {
	req = req.Normalized()

	parts := []string{
		runIDVersion,
		string(source),
		req.UserID,
		string(req.InvestmentMode),
		fmt.Sprintf("%.6f", req.InitialInvestment),
		fmt.Sprintf("%.6f", req.MonthlyContribution),
		req.Cadence.String(),
		string(req.DistributionPolicy),
		req.Timeframe.Label(),
		req.Timeframe.Start.Format(domain.DateLayout),
		req.Timeframe.End.Format(domain.DateLayout),
		fmt.Sprintf("%d", req.Timeframe.Months),
		req.BenchmarkSymbol,
		fmt.Sprintf("%t", req.InflationAdjust),
		inputs,
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}
