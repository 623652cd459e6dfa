package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

func testRows() []entity.JoinedRecord {
	qty := 3
	return []entity.JoinedRecord{
		{
			Identifier:     "B001",
			Name:           "Sedia, \"ufficio\"",
			SKU:            "SKU-1",
			Site:           "IT",
			StatusFlag:     "Attivo",
			Quantity:       &qty,
			ListedPrice:    decimal.NewNullDecimal(decimal.RequireFromString("10")),
			ReferencePrice: decimal.NewNullDecimal(decimal.RequireFromString("8.5")),
			PercentGap:     decimal.NewNullDecimal(decimal.RequireFromString("-15")),
			Status:         entity.StatusOutOfMarket,
		},
		{Identifier: "B002", Name: "Lampada", Site: "DE"},
	}
}

func TestCSVExport(t *testing.T) {
	exp := NewCSVExporter()
	ctx := context.Background()

	first, err := exp.Export(ctx, testRows())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	second, _ := exp.Export(ctx, testRows())
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated exports differ")
	}

	records, err := csv.NewReader(bytes.NewReader(first)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if !reflect.DeepEqual(records[0], entity.DisplayColumns) {
		t.Fatalf("header = %q", records[0])
	}
	want := []string{"B001", "Sedia, \"ufficio\"", "SKU-1", "IT", "Attivo", "3", "10.00", "8.50", "-15.00", "Fuori Mercato"}
	if !reflect.DeepEqual(records[1], want) {
		t.Fatalf("row = %q", records[1])
	}
	if records[2][6] != "" || records[2][9] != "N/D" {
		t.Fatalf("missing values = %q", records[2])
	}
}

func TestCSVExportEmpty(t *testing.T) {
	data, err := NewCSVExporter().Export(context.Background(), nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	records, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if len(records) != 1 {
		t.Fatalf("records = %d, want header only", len(records))
	}
}

func TestXLSXExport(t *testing.T) {
	exp := NewXLSXExporter()
	data, err := exp.Export(context.Background(), testRows())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || !reflect.DeepEqual(rows[0], entity.DisplayColumns) {
		t.Fatalf("rows = %q", rows)
	}
	if rows[1][5] != "3" || rows[1][6] != "10" || rows[1][7] != "8.5" || rows[1][8] != "-15" {
		t.Fatalf("numeric cells = %q", rows[1])
	}
	if rows[2][9] != "N/D" {
		t.Fatalf("second row = %q", rows[2])
	}
}

func TestSQLiteExport(t *testing.T) {
	dir := t.TempDir()
	data, err := NewSQLiteExporter(dir).Export(context.Background(), testRows())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("temp database left behind: %v", entries)
	}

	path := filepath.Join(t.TempDir(), "report.sqlite")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + TableName).Scan(&count); err != nil || count != 2 {
		t.Fatalf("count = %d, %v", count, err)
	}

	var (
		listed, gap sql.NullFloat64
		status      string
	)
	err = db.QueryRow(`SELECT "Prezzo di vendita attuale", "Differenza %", "Stato Prodotto" FROM report WHERE ASIN = 'B001'`).
		Scan(&listed, &gap, &status)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if listed.Float64 != 10 || gap.Float64 != -15 || status != "Fuori Mercato" {
		t.Fatalf("B001 = %v %v %s", listed, gap, status)
	}

	err = db.QueryRow(`SELECT "Prezzo di vendita attuale" FROM report WHERE ASIN = 'B002'`).Scan(&listed)
	if err != nil || listed.Valid {
		t.Fatalf("missing price should be NULL, got %v, %v", listed, err)
	}
}

func TestExporterMetadata(t *testing.T) {
	cases := map[string]string{
		NewCSVExporter().Extension():      "csv",
		NewXLSXExporter().Extension():     "xlsx",
		NewSQLiteExporter("").Extension(): "sqlite",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("extension %q, want %q", got, want)
		}
	}
}
