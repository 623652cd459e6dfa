package entity

import "github.com/shopspring/decimal"

// Product inventory row after column mapping
type Product struct {
	Identifier  string
	Site        string
	StatusFlag  string // listing status from the inventory export, e.g. "Attivo"
	Name        string
	SKU         string
	Quantity    *int // nil = unknown
	ListedPrice decimal.NullDecimal
	Source      string
	Row         int
}

// Reference competitor tracking row (Keepa)
type Reference struct {
	Identifier     string
	Site           string
	Title          string
	ReferencePrice decimal.NullDecimal
	LowestPrice    decimal.NullDecimal
	Avg90Price     decimal.NullDecimal
	HighestPrice   decimal.NullDecimal
	Source         string
	Row            int
}

// HasHistory at least one history price is known
func (r Reference) HasHistory() bool {
	return r.LowestPrice.Valid || r.Avg90Price.Valid || r.HighestPrice.Valid
}
