package usecase

import (
	"testing"

	"github.com/yourusername/price-monitor/internal/domain/entity"
)

func TestPercentGap(t *testing.T) {
	cases := []struct {
		listed, ref string
		want        string // "" = undefined
	}{
		{"10.00", "8.50", "-15"},
		{"8", "10", "25"},
		{"10", "10", "0"},
		{"0", "5", ""},
		{"", "5", ""},
		{"5", "", ""},
	}
	for _, tc := range cases {
		got := PercentGap(price(tc.listed), price(tc.ref))
		if tc.want == "" {
			if got.Valid {
				t.Errorf("PercentGap(%s, %s) = %s, want undefined", tc.listed, tc.ref, got.Decimal)
			}
			continue
		}
		if !got.Valid || !got.Decimal.Equal(price(tc.want).Decimal) {
			t.Errorf("PercentGap(%s, %s) = %v, want %s", tc.listed, tc.ref, got, tc.want)
		}
	}
}

func TestClassifyRecords(t *testing.T) {
	rows := []entity.JoinedRecord{
		{Identifier: "B001", ListedPrice: price("10.00"), ReferencePrice: price("8.50"), ProductRow: 2},
		{Identifier: "B002", ListedPrice: price("10"), ReferencePrice: price("9.50"), ProductRow: 3},
		{Identifier: "B003", ListedPrice: price("10"), ReferencePrice: price("12"), ProductRow: 4},
		{Identifier: "B004", ReferencePrice: price("12"), ProductRow: 5},
		{Identifier: "B005", ListedPrice: price("0"), ReferencePrice: price("12"), ProductRow: 6},
	}
	issues := Classify(rows, entity.DefaultThresholds())

	want := []entity.Status{
		entity.StatusOutOfMarket,
		entity.StatusThinMargin,
		entity.StatusCompetitive,
		entity.StatusUndefined,
		entity.StatusUndefined,
	}
	for i, st := range want {
		if rows[i].Status != st {
			t.Errorf("%s: status %s, want %s", rows[i].Identifier, rows[i].Status, st)
		}
	}
	if len(issues) != 2 {
		t.Fatalf("issues = %+v, want 2 undefined gaps", issues)
	}
	if issues[0].Kind != entity.IssueUndefinedGap || issues[0].Row != 5 || issues[0].Detail != "B004: listed price missing" {
		t.Fatalf("first issue = %+v", issues[0])
	}
	if issues[1].Detail != "B005: listed price is zero" {
		t.Fatalf("second issue = %+v", issues[1])
	}
}
