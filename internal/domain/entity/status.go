package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Status competitiveness of a listed price against the market
type Status int

const (
	// StatusUndefined gap could not be computed; never one of the three buckets
	StatusUndefined Status = iota
	StatusOutOfMarket
	StatusThinMargin
	StatusCompetitive
)

// AllStatuses in display order
var AllStatuses = []Status{StatusOutOfMarket, StatusThinMargin, StatusCompetitive, StatusUndefined}

// String label shown to the seller
func (s Status) String() string {
	switch s {
	case StatusOutOfMarket:
		return "Fuori Mercato"
	case StatusThinMargin:
		return "Margine Insufficiente"
	case StatusCompetitive:
		return "Competitivo"
	default:
		return "N/D"
	}
}

// Code stable machine name
func (s Status) Code() string {
	switch s {
	case StatusOutOfMarket:
		return "out_of_market"
	case StatusThinMargin:
		return "thin_margin"
	case StatusCompetitive:
		return "competitive"
	default:
		return "undefined"
	}
}

// MarshalText JSON/text encoding uses the code
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.Code()), nil
}

// UnmarshalText accepts code, label or a short prefix of either
func (s *Status) UnmarshalText(b []byte) error {
	parsed, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown status %q", string(b))
	}
	*s = parsed
	return nil
}

// ParseStatus matches a code ("thin_margin"), a label ("Margine Insufficiente")
// or a prefix of either ("fuori", "thin")
func ParseStatus(s string) (Status, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	if needle == "" {
		return StatusUndefined, false
	}
	for _, st := range AllStatuses {
		code := st.Code()
		label := strings.ToLower(st.String())
		if needle == code || needle == label {
			return st, true
		}
	}
	for _, st := range AllStatuses {
		if strings.HasPrefix(st.Code(), needle) || strings.HasPrefix(strings.ToLower(st.String()), needle) {
			return st, true
		}
	}
	return StatusUndefined, false
}

// Thresholds boundaries of the classification rule, in percent
type Thresholds struct {
	OutOfMarketBelow decimal.Decimal
	CompetitiveFrom  decimal.Decimal
}

// DefaultThresholds gap < -10 out of market, -10 <= gap < 0 thin margin, gap >= 0 competitive
func DefaultThresholds() Thresholds {
	return Thresholds{
		OutOfMarketBelow: decimal.NewFromInt(-10),
		CompetitiveFrom:  decimal.Zero,
	}
}

// Validate the thin margin band cannot be negative
func (t Thresholds) Validate() error {
	if t.OutOfMarketBelow.GreaterThan(t.CompetitiveFrom) {
		return fmt.Errorf("out-of-market threshold %s is above competitive threshold %s",
			t.OutOfMarketBelow, t.CompetitiveFrom)
	}
	return nil
}

// Classify total over defined gaps; a missing gap stays StatusUndefined
func (t Thresholds) Classify(gap decimal.NullDecimal) Status {
	if !gap.Valid {
		return StatusUndefined
	}
	switch {
	case gap.Decimal.LessThan(t.OutOfMarketBelow):
		return StatusOutOfMarket
	case gap.Decimal.LessThan(t.CompetitiveFrom):
		return StatusThinMargin
	default:
		return StatusCompetitive
	}
}
