package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
	"github.com/yourusername/price-monitor/internal/infrastructure/storage"
)

func newTestSessions() SessionUseCase {
	reports, _, _ := newTestReports(entity.JoinByIdentifier)
	return NewSessionUseCase(storage.NewMemorySessionRepository(10), parser.NewTableLoader(), reports, "")
}

func TestSessionRejectsUnmappedUpload(t *testing.T) {
	uc := newTestSessions()
	ctx := context.Background()

	_, err := uc.UploadInventory(ctx, 1, entity.SourceFile{Name: "wrong.csv", Data: []byte("a,b\n1,2\n")})
	if !errors.Is(err, entity.ErrMissingColumn) {
		t.Fatalf("got %v, want ErrMissingColumn", err)
	}
	s, _ := uc.Session(ctx, 1)
	if s.Inventory != nil {
		t.Fatalf("rejected file was stored")
	}

	if _, err := uc.AddEdit(ctx, 1, entity.EditAlign, decimal.Zero); !errors.Is(err, entity.ErrAwaitingInput) {
		t.Fatalf("edit before upload: got %v", err)
	}
}

func TestSessionUploadUsesInventoryEncoding(t *testing.T) {
	reports := NewReportUseCase(parser.NewTableLoader(), nil, nil, ReportOptions{
		Thresholds:        entity.DefaultThresholds(),
		InventoryEncoding: "latin1",
	})
	uc := NewSessionUseCase(storage.NewMemorySessionRepository(10), parser.NewTableLoader(), reports, "latin1")
	data := []byte("Codice(ASIN);Descrizione sul marketplace;Quantit\xe0;Prezzo\nB001;Caf\xe9;1;10,00\n")

	stats, err := uc.UploadInventory(context.Background(), 7, entity.SourceFile{Name: "inv.csv", Data: data})
	if err != nil {
		t.Fatalf("UploadInventory: %v", err)
	}
	if stats.Encoding != "iso-8859-1" {
		t.Fatalf("encoding = %s, want the configured iso-8859-1", stats.Encoding)
	}
	s, _ := uc.Session(context.Background(), 7)
	if s.Inventory.Encoding != "" {
		t.Fatalf("stored file keeps its own declaration, got %q", s.Inventory.Encoding)
	}
}

func TestSessionFlow(t *testing.T) {
	uc := newTestSessions()
	ctx := context.Background()
	const chat = 42

	stats, err := uc.UploadInventory(ctx, chat, entity.SourceFile{Name: "inventario.csv", Data: []byte(inventoryCSV)})
	if err != nil {
		t.Fatalf("UploadInventory: %v", err)
	}
	if stats.Rows != 3 || stats.Delimiter != ";" {
		t.Fatalf("stats = %+v", stats)
	}

	report, err := uc.Report(ctx, chat)
	if err != nil || report.State != entity.StateAwaitingInput {
		t.Fatalf("report before reference = %v, %v", report, err)
	}

	if _, err := uc.UploadReference(ctx, chat, entity.SourceFile{Name: "keepa.csv", Data: []byte(keepaCSV)}); err != nil {
		t.Fatalf("UploadReference: %v", err)
	}
	report, err = uc.Report(ctx, chat)
	if err != nil || report.State != entity.StateReady {
		t.Fatalf("report = %v, %v", report, err)
	}

	filter := entity.Filter{Statuses: []entity.Status{entity.StatusOutOfMarket}}
	if err := uc.SetView(ctx, chat, filter, entity.SortGapAsc); err != nil {
		t.Fatalf("SetView: %v", err)
	}
	report, err = uc.AddEdit(ctx, chat, entity.EditAlignOffset, decimal.RequireFromString("0.01"))
	if err != nil {
		t.Fatalf("AddEdit: %v", err)
	}
	if report.AppliedEdits != 1 || len(report.View) != 0 {
		t.Fatalf("after edit: applied %d, view %v", report.AppliedEdits, ids(report.View))
	}

	if _, err := uc.AddEdit(ctx, chat, entity.EditSetPrice, decimal.NewFromInt(-1)); !errors.Is(err, entity.ErrInvalidEdit) {
		t.Fatalf("negative set price: got %v", err)
	}

	data, exp, err := uc.Export(ctx, chat, "csv")
	if err != nil || exp.Extension() != "csv" {
		t.Fatalf("Export: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("export of an empty view = %q", data)
	}

	undone, err := uc.Undo(ctx, chat)
	if err != nil || undone == nil || undone.Kind != entity.EditAlignOffset {
		t.Fatalf("Undo = %+v, %v", undone, err)
	}
	if undone, _ := uc.Undo(ctx, chat); undone != nil {
		t.Fatalf("second undo returned %+v", undone)
	}
	report, _ = uc.Report(ctx, chat)
	if !equalIDs(report.View, "B001") {
		t.Fatalf("view after undo = %v", ids(report.View))
	}

	if err := uc.Reset(ctx, chat); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s, _ := uc.Session(ctx, chat); s.Ready() {
		t.Fatalf("session still ready after reset")
	}
}
