package entity

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// EditKind bulk price edit variants
type EditKind string

const (
	EditAlign       EditKind = "align"        // listed := reference
	EditAlignOffset EditKind = "align_offset" // listed := reference - amount
	EditSetPrice    EditKind = "set"          // listed := amount
)

// ParseEditKind accepts the kind names plus "offset" and "setprice"
func ParseEditKind(s string) (EditKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "align", "allinea":
		return EditAlign, true
	case "align_offset", "offset":
		return EditAlignOffset, true
	case "set", "setprice", "set_price":
		return EditSetPrice, true
	}
	return "", false
}

// Edit pending bulk edit applied to every row matching Filter
type Edit struct {
	ID        string
	Kind      EditKind
	Amount    decimal.Decimal
	Filter    Filter
	CreatedAt time.Time
}

// Validate kind is known and amount is not negative
func (e Edit) Validate() error {
	switch e.Kind {
	case EditAlign:
		return nil
	case EditAlignOffset, EditSetPrice:
		if e.Amount.IsNegative() {
			return eris.Wrapf(ErrInvalidEdit, "%s amount must not be negative, got %s", e.Kind, e.Amount)
		}
		return nil
	}
	return eris.Wrapf(ErrInvalidEdit, "unknown edit kind %q", e.Kind)
}

// NewPrice listed price after the edit; ok is false when the edit does not
// apply to the row (no reference price to align to, or a negative result)
func (e Edit) NewPrice(r JoinedRecord) (decimal.Decimal, bool) {
	switch e.Kind {
	case EditAlign:
		if !r.ReferencePrice.Valid {
			return decimal.Decimal{}, false
		}
		return r.ReferencePrice.Decimal, true
	case EditAlignOffset:
		if !r.ReferencePrice.Valid {
			return decimal.Decimal{}, false
		}
		price := r.ReferencePrice.Decimal.Sub(e.Amount)
		if price.IsNegative() {
			return decimal.Decimal{}, false
		}
		return price, true
	case EditSetPrice:
		return e.Amount, true
	}
	return decimal.Decimal{}, false
}
