package usecase

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
)

// percent gaps never come close to this
var unboundedGap = decimal.New(1, 18)

// SplitArgs "site=IT,DE name=usb hub sort=asc" -> key/values. A word without
// "=" continues the value of the previous key, so names may contain spaces.
func SplitArgs(text string) map[string][]string {
	args := make(map[string][]string)
	key := ""
	for _, word := range strings.Fields(text) {
		k, v, found := strings.Cut(word, "=")
		if found && k != "" {
			key = strings.ToLower(k)
			args[key] = append(args[key], v)
			continue
		}
		if key == "" {
			continue
		}
		vals := args[key]
		last := vals[len(vals)-1]
		if last != "" {
			last += " "
		}
		vals[len(vals)-1] = last + word
	}
	return args
}

// ParseViewArgs builds filter and sort order from request arguments.
// Keys: site, status, flag, qty ("1..10", "5..", "..3"), qty_min, qty_max,
// gap ("-20..0"), gap_min, gap_max, name, sort. Lists are comma separated
// and may repeat. qty_min/qty_max and gap_min/gap_max narrow a qty or gap
// range given in the same request.
func ParseViewArgs(args map[string][]string) (entity.Filter, entity.SortOrder, error) {
	var f entity.Filter
	order := entity.SortNone

	for _, key := range orderedKeys(args) {
		vals := args[key]
		switch key = strings.ToLower(key); key {
		case "site", "sito", "sites":
			for _, s := range splitList(vals) {
				f.Sites = append(f.Sites, parser.NormalizeSite(s))
			}
		case "status", "stato_prodotto", "statuses":
			for _, s := range splitList(vals) {
				st, ok := entity.ParseStatus(s)
				if !ok {
					return f, order, fmt.Errorf("unknown status %q", s)
				}
				f.Statuses = append(f.Statuses, st)
			}
		case "flag", "stato", "flags":
			f.Flags = append(f.Flags, splitList(vals)...)
		case "name", "nome", "q":
			f.NameQuery = strings.TrimSpace(strings.Join(vals, " "))
		case "sort", "order":
			o, ok := entity.ParseSortOrder(lastValue(vals))
			if !ok {
				return f, order, fmt.Errorf("unknown sort order %q", lastValue(vals))
			}
			order = o
		case "qty", "quantity", "quantita":
			r, err := parseIntRange(lastValue(vals))
			if err != nil {
				return f, order, fmt.Errorf("qty: %w", err)
			}
			f.Quantity = r
		case "qty_min", "qty_max":
			if err := setIntBound(&f, key, lastValue(vals)); err != nil {
				return f, order, err
			}
		case "gap", "diff":
			r, err := parseGapRange(lastValue(vals))
			if err != nil {
				return f, order, fmt.Errorf("gap: %w", err)
			}
			f.Gap = r
		case "gap_min", "gap_max":
			if err := setGapBound(&f, key, lastValue(vals)); err != nil {
				return f, order, err
			}
		default:
			return f, order, fmt.Errorf("unknown filter %q", key)
		}
	}
	if f.Quantity != nil && f.Quantity.Min > f.Quantity.Max {
		return f, order, fmt.Errorf("qty: min %d is above max %d", f.Quantity.Min, f.Quantity.Max)
	}
	if f.Gap != nil && f.Gap.Min.GreaterThan(f.Gap.Max) {
		return f, order, fmt.Errorf("gap: min %s is above max %s", f.Gap.Min, f.Gap.Max)
	}
	return f, order, nil
}

// orderedKeys sorted keys with the single bound keys last, so they apply on
// top of a full range whatever the map order
func orderedKeys(args map[string][]string) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	isBound := func(k string) bool {
		k = strings.ToLower(k)
		return strings.HasSuffix(k, "_min") || strings.HasSuffix(k, "_max")
	}
	slices.SortFunc(keys, func(a, b string) int {
		if ba, bb := isBound(a), isBound(b); ba != bb {
			if ba {
				return 1
			}
			return -1
		}
		return strings.Compare(a, b)
	})
	return keys
}

func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func lastValue(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[len(vals)-1])
}

func cutRange(s string) (lo, hi string, err error) {
	lo, hi, found := strings.Cut(s, "..")
	if !found {
		// a single value is an exact match
		return s, s, nil
	}
	if strings.TrimSpace(lo) == "" && strings.TrimSpace(hi) == "" {
		return "", "", fmt.Errorf("empty range %q", s)
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi), nil
}

func parseIntRange(s string) (*entity.IntRange, error) {
	lo, hi, err := cutRange(s)
	if err != nil {
		return nil, err
	}
	r := &entity.IntRange{Min: math.MinInt, Max: math.MaxInt}
	if lo != "" {
		if r.Min, err = strconv.Atoi(lo); err != nil {
			return nil, fmt.Errorf("invalid bound %q", lo)
		}
	}
	if hi != "" {
		if r.Max, err = strconv.Atoi(hi); err != nil {
			return nil, fmt.Errorf("invalid bound %q", hi)
		}
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("min %d is above max %d", r.Min, r.Max)
	}
	return r, nil
}

func parseGapRange(s string) (*entity.DecimalRange, error) {
	lo, hi, err := cutRange(s)
	if err != nil {
		return nil, err
	}
	r := &entity.DecimalRange{Min: unboundedGap.Neg(), Max: unboundedGap}
	if lo != "" {
		if r.Min, err = parser.ParsePrice(lo); err != nil {
			return nil, fmt.Errorf("invalid bound %q", lo)
		}
	}
	if hi != "" {
		if r.Max, err = parser.ParsePrice(hi); err != nil {
			return nil, fmt.Errorf("invalid bound %q", hi)
		}
	}
	if r.Min.GreaterThan(r.Max) {
		return nil, fmt.Errorf("min %s is above max %s", r.Min, r.Max)
	}
	return r, nil
}

func setIntBound(f *entity.Filter, key, raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, raw)
	}
	if f.Quantity == nil {
		f.Quantity = &entity.IntRange{Min: math.MinInt, Max: math.MaxInt}
	}
	if key == "qty_min" {
		f.Quantity.Min = n
	} else {
		f.Quantity.Max = n
	}
	return nil
}

func setGapBound(f *entity.Filter, key, raw string) error {
	d, err := parser.ParsePrice(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, raw)
	}
	if f.Gap == nil {
		f.Gap = &entity.DecimalRange{Min: unboundedGap.Neg(), Max: unboundedGap}
	}
	if key == "gap_min" {
		f.Gap.Min = d
	} else {
		f.Gap.Max = d
	}
	return nil
}

// DescribeFilter short human readable form of the active criteria
func DescribeFilter(f entity.Filter, order entity.SortOrder) string {
	var parts []string
	if len(f.Sites) > 0 {
		parts = append(parts, "site="+strings.Join(f.Sites, ","))
	}
	if len(f.Statuses) > 0 {
		codes := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			codes[i] = s.Code()
		}
		parts = append(parts, "status="+strings.Join(codes, ","))
	}
	if len(f.Flags) > 0 {
		parts = append(parts, "flag="+strings.Join(f.Flags, ","))
	}
	if f.Quantity != nil {
		parts = append(parts, "qty="+describeBounds(f.Quantity.Min != math.MinInt, strconv.Itoa(f.Quantity.Min),
			f.Quantity.Max != math.MaxInt, strconv.Itoa(f.Quantity.Max)))
	}
	if f.Gap != nil {
		parts = append(parts, "gap="+describeBounds(!f.Gap.Min.Equal(unboundedGap.Neg()), f.Gap.Min.String(),
			!f.Gap.Max.Equal(unboundedGap), f.Gap.Max.String()))
	}
	if f.NameQuery != "" {
		parts = append(parts, "name="+f.NameQuery)
	}
	if order != entity.SortNone {
		parts = append(parts, "sort="+order.String())
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func describeBounds(hasLo bool, lo string, hasHi bool, hi string) string {
	if hasLo && hasHi && lo == hi {
		return lo
	}
	s := ""
	if hasLo {
		s = lo
	}
	s += ".."
	if hasHi {
		s += hi
	}
	return s
}
