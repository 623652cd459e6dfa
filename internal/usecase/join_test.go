package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

func price(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func intPtr(n int) *int { return &n }

func TestJoinByIdentifier(t *testing.T) {
	products := []entity.Product{
		{Identifier: "B001", Name: "Sedia", ListedPrice: price("10.00"), Row: 2},
		{Identifier: "B002", Name: "Tavolo", ListedPrice: price("50"), Row: 3},
		{Identifier: "", Name: "Senza codice", Row: 4},
	}
	refs := []entity.Reference{
		{Identifier: "B001", Site: "IT", ReferencePrice: price("8.50"), Source: "keepa.csv", Row: 2},
		{Identifier: "B003", ReferencePrice: price("1"), Source: "keepa.csv", Row: 3},
		{Identifier: "", ReferencePrice: price("1"), Source: "keepa.csv", Row: 4},
	}

	rows := Join(products, refs, entity.JoinByIdentifier)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (empty identifiers never match)", len(rows))
	}
	r := rows[0]
	if r.Identifier != "B001" || r.Site != "IT" || r.ReferenceSource != "keepa.csv" || r.ReferenceRow != 2 || r.ProductRow != 2 {
		t.Fatalf("joined row = %+v", r)
	}
}

func TestJoinBySiteNeverCrossesRegions(t *testing.T) {
	products := []entity.Product{
		{Identifier: "B001", Site: "IT", ListedPrice: price("10")},
		{Identifier: "B001", Site: "DE", ListedPrice: price("12")},
		{Identifier: "B002", ListedPrice: price("5")},
	}
	refs := []entity.Reference{
		{Identifier: "B001", Site: "DE", ReferencePrice: price("11")},
		{Identifier: "B002", Site: "IT", ReferencePrice: price("5")},
	}

	rows := Join(products, refs, entity.JoinBySite)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Site != "DE" || !rows[0].ListedPrice.Decimal.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("joined row = %+v", rows[0])
	}

	// by identifier both inventory rows pair with the DE reference
	if got := len(Join(products, refs, entity.JoinByIdentifier)); got != 3 {
		t.Fatalf("identifier mode rows = %d, want 3", got)
	}
}

func TestJoinDuplicatesProduceEveryPair(t *testing.T) {
	products := []entity.Product{{Identifier: "B001", Row: 2}, {Identifier: "B001", Row: 3}}
	refs := []entity.Reference{{Identifier: "B001", Row: 2}, {Identifier: "B001", Row: 3}}

	rows := Join(products, refs, entity.JoinByIdentifier)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	seen := map[string]bool{}
	for _, r := range rows {
		key, _ := r.MergeKey(entity.JoinByIdentifier)
		seen[key] = true
	}
	if len(seen) != 4 {
		t.Fatalf("merge keys collide: %d distinct", len(seen))
	}

	// swapping sides keeps the same set of pairs
	swapped := joinPairs(refs, products,
		func(r entity.Reference) (string, bool) { return r.Identifier, r.Identifier != "" },
		func(p entity.Product) (string, bool) { return p.Identifier, p.Identifier != "" },
	)
	if len(swapped) != len(rows) {
		t.Fatalf("swapped join = %d pairs, want %d", len(swapped), len(rows))
	}
	pairs := map[[2]int]bool{}
	for _, r := range rows {
		pairs[[2]int{r.ProductRow, r.ReferenceRow}] = true
	}
	for _, p := range swapped {
		pair := [2]int{p.Right.Row, p.Left.Row}
		if !pairs[pair] {
			t.Fatalf("swapped join produced (product %d, reference %d), missing from the forward join", pair[0], pair[1])
		}
		delete(pairs, pair)
	}
	if len(pairs) != 0 {
		t.Fatalf("forward pairs not produced by the swapped join: %v", pairs)
	}
}

func TestJoinNameFallsBackToTitle(t *testing.T) {
	rows := Join(
		[]entity.Product{{Identifier: "B001"}},
		[]entity.Reference{{Identifier: "B001", Title: "Keepa title"}},
		entity.JoinByIdentifier,
	)
	if rows[0].Name != "Keepa title" {
		t.Fatalf("name = %q", rows[0].Name)
	}
}
