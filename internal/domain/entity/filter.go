package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SortOrder ordering of the report view by percent gap
type SortOrder int

const (
	SortNone SortOrder = iota
	SortGapAsc
	SortGapDesc
)

func (o SortOrder) String() string {
	switch o {
	case SortGapAsc:
		return "asc"
	case SortGapDesc:
		return "desc"
	default:
		return "none"
	}
}

// ParseSortOrder "asc"/"crescente", "desc"/"decrescente", "" or "none"
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, true
	case "asc", "ascending", "crescente":
		return SortGapAsc, true
	case "desc", "descending", "decrescente":
		return SortGapDesc, true
	}
	return SortNone, false
}

// IntRange inclusive on both bounds
type IntRange struct {
	Min int
	Max int
}

// Contains min <= v <= max
func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// DecimalRange inclusive on both bounds
type DecimalRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains min <= v <= max
func (r DecimalRange) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(r.Min) && v.LessThanOrEqual(r.Max)
}

// Filter report view selection; empty sets and nil ranges do not restrict
type Filter struct {
	Sites     []string
	Statuses  []Status
	Flags     []string
	Quantity  *IntRange
	Gap       *DecimalRange
	NameQuery string
}

// IsZero filter passes every row
func (f Filter) IsZero() bool {
	return len(f.Sites) == 0 && len(f.Statuses) == 0 && len(f.Flags) == 0 &&
		f.Quantity == nil && f.Gap == nil && strings.TrimSpace(f.NameQuery) == ""
}

// Match row passes every active criterion
func (f Filter) Match(r JoinedRecord) bool {
	if len(f.Sites) > 0 && !containsFold(f.Sites, r.Site) {
		return false
	}
	if len(f.Flags) > 0 && !containsFold(f.Flags, r.StatusFlag) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == r.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Quantity != nil {
		if r.Quantity == nil || !f.Quantity.Contains(*r.Quantity) {
			return false
		}
	}
	if f.Gap != nil {
		if !r.PercentGap.Valid || !f.Gap.Contains(r.PercentGap.Decimal) {
			return false
		}
	}
	if q := strings.TrimSpace(f.NameQuery); q != "" {
		if r.Name == "" || !strings.Contains(strings.ToLower(r.Name), strings.ToLower(q)) {
			return false
		}
	}
	return true
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
