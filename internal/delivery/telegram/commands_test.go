package telegram

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCaption(t *testing.T) {
	cases := []struct {
		caption, file string
		role          uploadRole
		site          string
	}{
		{"inventario", "export.csv", roleInventory, ""},
		{"Keepa DE", "export.csv", roleReference, "DE"},
		{"keepa amazon.it", "export.csv", roleReference, "IT"},
		{"amazon", "x.csv", roleReference, ""},
		{"", "Keepa_Export_2024.xlsx", roleReference, ""},
		{"", "inventario_marzo.csv", roleInventory, ""},
		{"", "ReadyPro.csv", roleInventory, ""},
		{"ciao", "dati.csv", roleUnknown, ""},
	}
	for _, tc := range cases {
		role, site := parseCaption(tc.caption, tc.file)
		if role != tc.role || site != tc.site {
			t.Errorf("parseCaption(%q, %q) = %d %q, want %d %q", tc.caption, tc.file, role, site, tc.role, tc.site)
		}
	}
}

func TestAcceptedFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.csv": true, "A.XLSX": true, "b.tsv": true, "c.txt": true,
		"d.xls": false, "e.pdf": false, "noext": false,
	} {
		if got := acceptedFile(name); got != want {
			t.Errorf("acceptedFile(%q) = %v", name, got)
		}
	}
}

func TestParseAmount(t *testing.T) {
	fallback := decimal.RequireFromString("0.01")

	got, err := parseAmount(" 0,50 ", nil)
	if err != nil || !got.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("parseAmount(0,50) = %s, %v", got, err)
	}
	got, err = parseAmount("", &fallback)
	if err != nil || !got.Equal(fallback) {
		t.Fatalf("fallback = %s, %v", got, err)
	}
	for _, in := range []string{"", "abc", "-1"} {
		if _, err := parseAmount(in, nil); err == nil {
			t.Errorf("parseAmount(%q) accepted", in)
		}
	}
}
