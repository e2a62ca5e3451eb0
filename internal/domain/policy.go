package domain

import "strings"

// DistributionPolicy decides what happens to dividend cash.
type DistributionPolicy string

const (
	PolicyReinvest DistributionPolicy = "reinvest"
	PolicyCashOut  DistributionPolicy = "cash_out"
)

// String returns the string representation of DistributionPolicy.
func (p DistributionPolicy) String() string {
	return string(p)
}

// IsValid checks if the policy is a valid value.
func (p DistributionPolicy) IsValid() bool {
	return p == PolicyReinvest || p == PolicyCashOut
}

// ParseDistributionPolicy returns the matching policy or fallback when s is unknown.
func ParseDistributionPolicy(s string, fallback DistributionPolicy) DistributionPolicy {
	p := DistributionPolicy(strings.ToLower(strings.TrimSpace(s)))
	if p.IsValid() {
		return p
	}
	return fallback
}

// InvestmentMode selects lump-sum only or lump-sum plus recurring contributions.
type InvestmentMode string

const (
	ModeLumpSum InvestmentMode = "lump_sum"
	ModeMonthly InvestmentMode = "monthly"
)

// String returns the string representation of InvestmentMode.
func (m InvestmentMode) String() string {
	return string(m)
}

// IsValid checks if the mode is a valid value.
func (m InvestmentMode) IsValid() bool {
	return m == ModeLumpSum || m == ModeMonthly
}

// ParseInvestmentMode returns the matching mode or fallback when s is unknown.
func ParseInvestmentMode(s string, fallback InvestmentMode) InvestmentMode {
	m := InvestmentMode(strings.ToLower(strings.TrimSpace(s)))
	if m.IsValid() {
		return m
	}
	return fallback
}
