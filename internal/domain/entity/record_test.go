package entity

import (
	"errors"
	"reflect"
	"testing"
)

func TestJoinKey(t *testing.T) {
	if _, ok := JoinKey(JoinByIdentifier, "", "IT"); ok {
		t.Errorf("empty identifier produced a key")
	}
	if _, ok := JoinKey(JoinBySite, "B001", ""); ok {
		t.Errorf("missing site produced a key in site mode")
	}
	it, _ := JoinKey(JoinBySite, "B001", "IT")
	de, _ := JoinKey(JoinBySite, "B001", "DE")
	if it == de {
		t.Errorf("IT and DE share a key")
	}
	a, _ := JoinKey(JoinByIdentifier, "B001", "IT")
	b, _ := JoinKey(JoinByIdentifier, "B001", "DE")
	if a != b {
		t.Errorf("identifier mode should ignore the site")
	}
}

func TestMergeKeyDistinguishesSourceRows(t *testing.T) {
	r1 := JoinedRecord{Identifier: "B001", ProductRow: 2, ReferenceSource: "keepa.csv", ReferenceRow: 5}
	r2 := r1
	r2.ReferenceRow = 6
	k1, _ := r1.MergeKey(JoinByIdentifier)
	k2, _ := r2.MergeKey(JoinByIdentifier)
	if k1 == k2 {
		t.Fatalf("duplicate pairs share a merge key")
	}
}

func TestParseJoinMode(t *testing.T) {
	if m, err := ParseJoinMode("ASIN+site"); err != nil || m != JoinBySite {
		t.Fatalf("got %s, %v", m, err)
	}
	if m, err := ParseJoinMode(""); err != nil || m != JoinByIdentifier {
		t.Fatalf("default: got %s, %v", m, err)
	}
	if _, err := ParseJoinMode("ean"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}

func TestDisplayValues(t *testing.T) {
	row := JoinedRecord{
		Identifier:     "B001",
		Name:           "Sedia",
		Site:           "IT",
		Quantity:       qty(3),
		ListedPrice:    gap("10"),
		ReferencePrice: gap("8.5"),
		PercentGap:     gap("-15"),
		Status:         StatusOutOfMarket,
	}
	got := row.DisplayValues()
	want := []string{"B001", "Sedia", "", "IT", "", "3", "10.00", "8.50", "-15.00", "Fuori Mercato"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DisplayValues = %q, want %q", got, want)
	}
	if len(row.DisplayCells()) != len(DisplayColumns) {
		t.Fatalf("DisplayCells has %d cells, want %d", len(row.DisplayCells()), len(DisplayColumns))
	}

	empty := JoinedRecord{Identifier: "B002"}.DisplayValues()
	if empty[5] != "" || empty[8] != "" || empty[9] != "N/D" {
		t.Fatalf("missing values rendered as %q", empty)
	}
}

func TestMissingColumnError(t *testing.T) {
	err := error(&MissingColumnError{Source: "inv.csv", Field: "quantity", Expected: []string{"Quantita'", "Qty"}})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("not a missing column error")
	}
	want := `inv.csv: missing required column "quantity" (expected one of: Quantita', Qty)`
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
}

func TestReportSummary(t *testing.T) {
	r := &Report{
		View: []JoinedRecord{{Status: StatusCompetitive}, {Status: StatusCompetitive}, {Status: StatusUndefined}},
		Issues: []Issue{
			{Kind: IssueUndefinedGap}, {Kind: IssueMalformedRow}, {Kind: IssueUndefinedGap},
		},
	}
	s := r.Summary()
	if s[StatusCompetitive] != 2 || s[StatusUndefined] != 1 || s[StatusOutOfMarket] != 0 {
		t.Fatalf("summary = %v", s)
	}
	if r.IssueCount(IssueUndefinedGap) != 2 {
		t.Fatalf("issue count = %d", r.IssueCount(IssueUndefinedGap))
	}
	is := Issue{Kind: IssueUnparsablePrice, Source: "keepa.csv", Row: 4, Field: "reference_price", Detail: "abc"}
	if is.String() != "unparsable_price [keepa.csv:4] reference_price: abc" {
		t.Fatalf("Issue.String = %q", is.String())
	}
}
