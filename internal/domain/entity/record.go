package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// JoinMode which columns make up the join key
type JoinMode int

const (
	JoinByIdentifier JoinMode = iota
	JoinBySite
)

func (m JoinMode) String() string {
	if m == JoinBySite {
		return "asin+site"
	}
	return "asin"
}

// ParseJoinMode accepts "asin", "identifier", "asin+site", "identifier+site"
func ParseJoinMode(s string) (JoinMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asin", "identifier", "id":
		return JoinByIdentifier, nil
	case "asin+site", "identifier+site", "id+site", "asin+region", "site":
		return JoinBySite, nil
	}
	return JoinByIdentifier, fmt.Errorf("unknown join key %q", s)
}

const keySep = "\x1f"

// JoinKey builds the key for a row; ok is false when the row cannot take
// part in the join (no identifier, or no site while joining by site)
func JoinKey(mode JoinMode, identifier, site string) (string, bool) {
	if identifier == "" {
		return "", false
	}
	if mode == JoinBySite {
		if site == "" {
			return "", false
		}
		return identifier + keySep + site, true
	}
	return identifier, true
}

// JoinedRecord one inventory row paired with one reference row
type JoinedRecord struct {
	Identifier     string
	Site           string
	StatusFlag     string
	Name           string
	SKU            string
	Quantity       *int
	ListedPrice    decimal.NullDecimal
	ReferencePrice decimal.NullDecimal
	LowestPrice    decimal.NullDecimal
	Avg90Price     decimal.NullDecimal
	HighestPrice   decimal.NullDecimal
	PercentGap     decimal.NullDecimal
	Status         Status

	ProductRow      int
	ReferenceSource string
	ReferenceRow    int
}

// Key join key of the record
func (r JoinedRecord) Key(mode JoinMode) (string, bool) {
	return JoinKey(mode, r.Identifier, r.Site)
}

// MergeKey join key disambiguated by the source rows that produced the pair,
// so duplicated identifiers never overwrite each other
func (r JoinedRecord) MergeKey(mode JoinMode) (string, bool) {
	key, ok := r.Key(mode)
	if !ok {
		return "", false
	}
	return key + keySep + strconv.Itoa(r.ProductRow) + keySep + r.ReferenceSource + keySep + strconv.Itoa(r.ReferenceRow), true
}

// DisplayColumns canonical column order for every output
var DisplayColumns = []string{
	"ASIN",
	"Nome prodotto",
	"SKU",
	"Sito",
	"Stato",
	"Quantita",
	"Prezzo di vendita attuale",
	"Prezzo attuale su Amazon",
	"Differenza %",
	"Stato Prodotto",
}

// HistoryColumns columns of the price history view
var HistoryColumns = []string{
	"ASIN",
	"Nome prodotto",
	"Prezzo minimo storico",
	"Prezzo medio ultimi 90 giorni",
	"Prezzo massimo storico",
}

// FormatPrice two decimals with a decimal point, "" when missing
func FormatPrice(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

// DisplayValues row as text, aligned with DisplayColumns
func (r JoinedRecord) DisplayValues() []string {
	qty := ""
	if r.Quantity != nil {
		qty = strconv.Itoa(*r.Quantity)
	}
	return []string{
		r.Identifier,
		r.Name,
		r.SKU,
		r.Site,
		r.StatusFlag,
		qty,
		FormatPrice(r.ListedPrice),
		FormatPrice(r.ReferencePrice),
		FormatPrice(r.PercentGap),
		r.Status.String(),
	}
}

// DisplayCells row with numeric cells as numbers, aligned with DisplayColumns;
// missing values are empty strings
func (r JoinedRecord) DisplayCells() []any {
	cells := make([]any, 0, len(DisplayColumns))
	cells = append(cells, r.Identifier, r.Name, r.SKU, r.Site, r.StatusFlag)
	if r.Quantity != nil {
		cells = append(cells, *r.Quantity)
	} else {
		cells = append(cells, "")
	}
	for _, d := range []decimal.NullDecimal{r.ListedPrice, r.ReferencePrice, r.PercentGap} {
		if d.Valid {
			cells = append(cells, d.Decimal.Round(2).InexactFloat64())
		} else {
			cells = append(cells, "")
		}
	}
	return append(cells, r.Status.String())
}

// HistoryValues row of the history view, aligned with HistoryColumns
func (r JoinedRecord) HistoryValues() []string {
	return []string{
		r.Identifier,
		r.Name,
		FormatPrice(r.LowestPrice),
		FormatPrice(r.Avg90Price),
		FormatPrice(r.HighestPrice),
	}
}
