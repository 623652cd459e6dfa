package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yourusername/price-monitor/internal/domain/entity"
)

func TestMapColumnsInventory(t *testing.T) {
	header := []string{"\ufeffCodice(ASIN)", "  Descrizione sul marketplace ", "SKU", "Sito", "Stato", "QUANTITA'", "Prezzo"}
	m := MapColumns("inv.csv", header, InventorySchema)
	if !m.OK() {
		t.Fatalf("unexpected missing columns: %v", m.Err())
	}
	want := map[Field]int{
		FieldIdentifier:  0,
		FieldName:        1,
		FieldSKU:         2,
		FieldSite:        3,
		FieldStatusFlag:  4,
		FieldQuantity:    5,
		FieldListedPrice: 6,
	}
	if !reflect.DeepEqual(m.Columns, want) {
		t.Fatalf("columns = %v, want %v", m.Columns, want)
	}
	if len(m.Absent) != 0 {
		t.Fatalf("absent = %v, want none", m.Absent)
	}
}

func TestMapColumnsFirstAliasWins(t *testing.T) {
	header := []string{"ASIN", "Codice(ASIN)", "Nome prodotto", "Quantità", "Price", "Prezzo"}
	m := MapColumns("inv.csv", header, InventorySchema)
	if idx, _ := m.Index(FieldIdentifier); idx != 1 {
		t.Fatalf("identifier bound to %d, want 1 (Codice(ASIN) has priority)", idx)
	}
	if idx, _ := m.Index(FieldListedPrice); idx != 5 {
		t.Fatalf("listed price bound to %d, want 5", idx)
	}
}

func TestMapColumnsNFC(t *testing.T) {
	// "Quantita" followed by a combining grave accent
	header := []string{"ASIN", "Title", "Quantita\u0300", "Price"}
	m := MapColumns("inv.csv", header, InventorySchema)
	if !m.Has(FieldQuantity) {
		t.Fatalf("decomposed header not matched: %v", m.Err())
	}
}

func TestMapColumnsReportsEveryMissingField(t *testing.T) {
	m := MapColumns("keepa.csv", []string{"Title", "Something"}, ReferenceSchema)
	if m.OK() {
		t.Fatalf("expected missing columns")
	}
	if len(m.Missing) != 2 {
		t.Fatalf("missing = %d, want 2 (identifier and reference price)", len(m.Missing))
	}
	err := m.Err()
	if !errors.Is(err, entity.ErrMissingColumn) {
		t.Fatalf("want ErrMissingColumn, got %v", err)
	}
	var mc *entity.MissingColumnError
	if !errors.As(err, &mc) || mc.Source != "keepa.csv" {
		t.Fatalf("want *MissingColumnError for keepa.csv, got %v", err)
	}
	if m.Missing[1].Field != string(FieldReferencePrice) || m.Missing[1].Expected[0] != "Buy Box: Current" {
		t.Fatalf("unexpected second missing column: %+v", m.Missing[1])
	}
}

func TestMapColumnsOptionalAbsent(t *testing.T) {
	m := MapColumns("keepa.csv", []string{"ASIN", "Buy Box: Current"}, ReferenceSchema)
	if !m.OK() {
		t.Fatalf("unexpected error: %v", m.Err())
	}
	if len(m.Absent) != 5 {
		t.Fatalf("absent = %v, want site, title and the three history fields", m.Absent)
	}
}

func TestRenameDuplicateColumns(t *testing.T) {
	got := RenameDuplicateColumns([]string{"a", "b", "a", "a", "b"})
	want := []string{"a", "b", "a_1", "a_2", "b_1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeHeader(t *testing.T) {
	if got := NormalizeHeader("  Buy   Box:\tCurrent "); got != "buy box: current" {
		t.Fatalf("got %q", got)
	}
}
