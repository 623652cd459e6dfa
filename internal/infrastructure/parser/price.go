package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

var currencyStripper = strings.NewReplacer(
	"€", "",
	"$", "",
	"£", "",
	"\u00a0", "", // no-break space
	"\u202f", "", // narrow no-break space
)

// ParsePrice locale formatted price ("33,80 €", "43,55", "12.5") to a decimal.
// The comma is always the decimal separator; grouping separators are not
// supported, so "1.234,56" fails.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = currencyStripper.Replace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "eur"), "eur"))
	if s == "" {
		return decimal.Decimal{}, eris.Wrap(entity.ErrUnparsablePrice, "empty price")
	}
	s = strings.ReplaceAll(s, ",", ".")
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, eris.Wrapf(entity.ErrUnparsablePrice, "invalid price format: %q", raw)
	}
	return price, nil
}

// NormalizePrice any cell value to a price; absent or unparseable values give
// an invalid NullDecimal, never an error
func NormalizePrice(v any) decimal.NullDecimal {
	switch val := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case decimal.Decimal:
		return decimal.NewNullDecimal(val)
	case decimal.NullDecimal:
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(val))
	case float32:
		return NormalizePrice(float64(val))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(val)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(val))
	case string:
		price, err := ParsePrice(val)
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(price)
	case *string:
		if val == nil {
			return decimal.NullDecimal{}
		}
		return NormalizePrice(*val)
	default:
		return NormalizePrice(fmt.Sprint(val))
	}
}

// NormalizeQuantity integral value >= 0 ("12", "12,0"), nil otherwise
func NormalizeQuantity(v any) *int {
	d := NormalizePrice(v)
	if !d.Valid || d.Decimal.IsNegative() || !d.Decimal.IsInteger() {
		return nil
	}
	if d.Decimal.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return nil
	}
	qty := int(d.Decimal.IntPart())
	return &qty
}
