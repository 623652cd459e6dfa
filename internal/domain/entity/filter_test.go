package entity

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func qty(n int) *int { return &n }

func TestFilterMatch(t *testing.T) {
	row := JoinedRecord{
		Identifier: "B001",
		Site:       "IT",
		StatusFlag: "Attivo",
		Name:       "Sedia da ufficio",
		Quantity:   qty(5),
		PercentGap: gap("-4.5"),
		Status:     StatusThinMargin,
	}
	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero", Filter{}, true},
		{"site", Filter{Sites: []string{"de", "it"}}, true},
		{"other site", Filter{Sites: []string{"DE"}}, false},
		{"flag case", Filter{Flags: []string{"attivo"}}, true},
		{"status", Filter{Statuses: []Status{StatusCompetitive}}, false},
		{"quantity", Filter{Quantity: &IntRange{Min: 5, Max: 5}}, true},
		{"quantity out", Filter{Quantity: &IntRange{Min: 6, Max: 10}}, false},
		{"gap", Filter{Gap: &DecimalRange{Min: decimal.NewFromInt(-10), Max: decimal.Zero}}, true},
		{"gap out", Filter{Gap: &DecimalRange{Min: decimal.Zero, Max: decimal.NewFromInt(10)}}, false},
		{"name", Filter{NameQuery: "UFFICIO"}, true},
		{"name out", Filter{NameQuery: "tavolo"}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Match(row); got != tc.want {
			t.Errorf("%s: Match = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFilterUnknownValuesNeverMatchRanges(t *testing.T) {
	row := JoinedRecord{Identifier: "B001"}
	if (Filter{Quantity: &IntRange{Min: 0, Max: 100}}).Match(row) {
		t.Errorf("unknown quantity matched a quantity range")
	}
	if (Filter{Gap: &DecimalRange{Min: decimal.NewFromInt(-100), Max: decimal.NewFromInt(100)}}).Match(row) {
		t.Errorf("undefined gap matched a gap range")
	}
	if !(Filter{Statuses: []Status{StatusUndefined}}).Match(row) {
		t.Errorf("undefined status filter should match undefined rows")
	}
}

func TestFilterIsZero(t *testing.T) {
	if !(Filter{NameQuery: "  "}).IsZero() {
		t.Errorf("blank name query should be zero")
	}
	if (Filter{Sites: []string{"IT"}}).IsZero() {
		t.Errorf("site filter reported as zero")
	}
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]SortOrder{"": SortNone, "ASC": SortGapAsc, "decrescente": SortGapDesc} {
		got, ok := ParseSortOrder(in)
		if !ok || got != want {
			t.Errorf("ParseSortOrder(%q) = %s, %v", in, got, ok)
		}
	}
	if _, ok := ParseSortOrder("sideways"); ok {
		t.Errorf("unknown order accepted")
	}
}

func TestEditNewPrice(t *testing.T) {
	withRef := JoinedRecord{ListedPrice: gap("10"), ReferencePrice: gap("8.50")}
	noRef := JoinedRecord{ListedPrice: gap("10")}

	cases := []struct {
		name string
		edit Edit
		row  JoinedRecord
		want string // "" = not applied
	}{
		{"align", Edit{Kind: EditAlign}, withRef, "8.5"},
		{"align without reference", Edit{Kind: EditAlign}, noRef, ""},
		{"offset", Edit{Kind: EditAlignOffset, Amount: decimal.RequireFromString("0.01")}, withRef, "8.49"},
		{"offset below zero", Edit{Kind: EditAlignOffset, Amount: decimal.NewFromInt(9)}, withRef, ""},
		{"set", Edit{Kind: EditSetPrice, Amount: decimal.NewFromInt(12)}, noRef, "12"},
	}
	for _, tc := range cases {
		price, ok := tc.edit.NewPrice(tc.row)
		if tc.want == "" {
			if ok {
				t.Errorf("%s: applied with %s", tc.name, price)
			}
			continue
		}
		if !ok || !price.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("%s: got %s, %v, want %s", tc.name, price, ok, tc.want)
		}
	}
}

func TestEditValidate(t *testing.T) {
	if err := (Edit{Kind: EditAlign}).Validate(); err != nil {
		t.Fatalf("align: %v", err)
	}
	err := Edit{Kind: EditSetPrice, Amount: decimal.NewFromInt(-1)}.Validate()
	if !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("negative amount: got %v", err)
	}
	if err := (Edit{Kind: "double"}).Validate(); !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("unknown kind: got %v", err)
	}
	if k, ok := ParseEditKind("offset"); !ok || k != EditAlignOffset {
		t.Fatalf("ParseEditKind(offset) = %s, %v", k, ok)
	}
}
