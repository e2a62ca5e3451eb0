package domain

import (
	"fmt"
	"strings"
	"time"
)

// CadenceKind names how often a recurring contribution is injected.
type CadenceKind string

const (
	CadenceMonthly   CadenceKind = "monthly"
	CadenceQuarterly CadenceKind = "quarterly"
	CadenceAnnual    CadenceKind = "annual"
)

// String returns the string representation of CadenceKind.
func (k CadenceKind) String() string {
	return string(k)
}

// IsValid checks if the kind is one of the supported cadences.
func (k CadenceKind) IsValid() bool {
	return k == CadenceMonthly || k == CadenceQuarterly || k == CadenceAnnual
}

// Cadence is the closed set Monthly | Quarterly | Annual(anchorMonth).
// Fields are unexported so a Cadence can only be built through the constructors
// below, which normalise input once. The zero value is Monthly.
type Cadence struct {
	kind   CadenceKind
	anchor time.Month // annual only; 0 means the axis start month
}

// MonthlyCadence contributes in every calendar month.
func MonthlyCadence() Cadence {
	return Cadence{kind: CadenceMonthly}
}

// QuarterlyCadence contributes every third month counted from the first month.
func QuarterlyCadence() Cadence {
	return Cadence{kind: CadenceQuarterly}
}

// AnnualCadence contributes once a year in anchorMonth.
// An anchor outside 1..12 is dropped and the axis start month is used instead.
func AnnualCadence(anchorMonth int) Cadence {
	c := Cadence{kind: CadenceAnnual}
	if anchorMonth >= 1 && anchorMonth <= 12 {
		c.anchor = time.Month(anchorMonth)
	}
	return c
}

// ParseCadence builds a Cadence from loosely typed input.
// Unknown kinds fall back to monthly; the anchor only applies to annual.
func ParseCadence(kind string, anchorMonth int) Cadence {
	switch CadenceKind(strings.ToLower(strings.TrimSpace(kind))) {
	case CadenceQuarterly:
		return QuarterlyCadence()
	case CadenceAnnual:
		return AnnualCadence(anchorMonth)
	default:
		return MonthlyCadence()
	}
}

// Kind returns the cadence kind.
func (c Cadence) Kind() CadenceKind {
	if c.kind == "" {
		return CadenceMonthly
	}
	return c.kind
}

// AnchorMonth returns the configured annual anchor, if any.
func (c Cadence) AnchorMonth() (time.Month, bool) {
	return c.anchor, c.anchor != 0
}

// AnchorMonthPtr returns the anchor as *int for reports, nil when unset.
func (c Cadence) AnchorMonthPtr() *int {
	if c.anchor == 0 {
		return nil
	}
	m := int(c.anchor)
	return &m
}

// String returns e.g. "monthly" or "annual(3)".
func (c Cadence) String() string {
	if c.Kind() == CadenceAnnual && c.anchor != 0 {
		return fmt.Sprintf("%s(%d)", CadenceAnnual, int(c.anchor))
	}
	return c.Kind().String()
}
