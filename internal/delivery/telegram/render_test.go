package telegram

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/usecase"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func readyReport(n int) *entity.Report {
	r := &entity.Report{State: entity.StateReady, GeneratedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	for i := 0; i < n; i++ {
		r.Rows = append(r.Rows, entity.JoinedRecord{
			Identifier:     "B00" + string(rune('A'+i%26)),
			Name:           "Prodotto",
			ListedPrice:    nd("10"),
			ReferencePrice: nd("8.5"),
			PercentGap:     nd("-15"),
			Status:         entity.StatusOutOfMarket,
		})
	}
	r.View = r.Rows
	return r
}

func TestBuildReportMessageStates(t *testing.T) {
	if got := buildReportMessage(&entity.Report{State: entity.StateAwaitingInput}, maxMessageLen); got != awaitingInputMessage {
		t.Fatalf("awaiting = %q", got)
	}
	failed := &entity.Report{State: entity.StateFailed, Issues: []entity.Issue{{Kind: entity.IssueMissingColumn, Source: "k.csv", Field: "reference_price"}}}
	if got := buildReportMessage(failed, maxMessageLen); !strings.Contains(got, "missing_column [k.csv] reference_price") {
		t.Fatalf("failed = %q", got)
	}
	if got := buildReportMessage(&entity.Report{State: entity.StateEmpty}, maxMessageLen); !strings.Contains(got, "Nessun prodotto in comune") {
		t.Fatalf("empty = %q", got)
	}
}

func TestBuildReportMessageReady(t *testing.T) {
	report := readyReport(2)
	report.View[1].Status = entity.StatusCompetitive
	report.Issues = []entity.Issue{{Kind: entity.IssueUndefinedGap}}
	report.Filter = entity.Filter{Sites: []string{"IT"}}

	msg := buildReportMessage(report, maxMessageLen)
	for _, want := range []string{"🔴 Fuori Mercato: 1", "🟢 Competitivo: 1", "Filtro: site=IT", "undefined_gap: 1", "10.00 → 8.50 (-15.00%)"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message lacks %q:\n%s", want, msg)
		}
	}
}

func TestBuildReportMessageLimits(t *testing.T) {
	msg := buildReportMessage(readyReport(100), maxMessageLen)
	if !strings.Contains(msg, "altre 75 righe") {
		t.Fatalf("preview not capped:\n%s", msg)
	}
	short := buildReportMessage(readyReport(100), 400)
	if utf8.RuneCountInString(short) > 400 {
		t.Fatalf("message exceeds limit: %d runes", utf8.RuneCountInString(short))
	}
}

func TestBuildIssueCountsOrder(t *testing.T) {
	got := buildIssueCounts([]entity.Issue{
		{Kind: entity.IssueMalformedRow},
		{Kind: entity.IssueUndefinedGap},
		{Kind: entity.IssueUndefinedGap},
	})
	if strings.Index(got, "undefined_gap") > strings.Index(got, "malformed_row") {
		t.Fatalf("most frequent kind should come first:\n%s", got)
	}
}

func TestBuildHistogramMessage(t *testing.T) {
	if got := buildHistogramMessage(nil); got != "Nessuna differenza percentuale calcolabile." {
		t.Fatalf("empty = %q", got)
	}
	got := buildHistogramMessage([]usecase.HistogramBin{{Lower: -10, Upper: 0, Count: 40}, {Lower: 0, Upper: 10, Count: 1}})
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if strings.Count(lines[1], "█") != 20 || strings.Count(lines[2], "█") != 1 {
		t.Fatalf("bars = %q", lines[1:])
	}
}

func TestBuildHistoryMessage(t *testing.T) {
	report := readyReport(1)
	if got := buildHistoryMessage(report, maxMessageLen); !strings.Contains(got, "non sono disponibili") {
		t.Fatalf("no history = %q", got)
	}
	report.HasHistory = true
	report.View[0].LowestPrice = nd("7")
	got := buildHistoryMessage(report, maxMessageLen)
	if !strings.Contains(got, "7.00 / - / -") {
		t.Fatalf("history = %q", got)
	}
}

func TestBuildUploadMessage(t *testing.T) {
	msg := buildUploadMessage(&entity.SourceStats{
		Source: "keepa.csv", Role: "reference", Site: "DE", Rows: 12, Skipped: 1,
		Format: "delimited", Delimiter: ";", Encoding: "utf-8",
	}, "")
	for _, want := range []string{"File Keepa DE caricato: keepa.csv", "Righe: 12", "Righe scartate: 1", `separatore ";"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("message lacks %q:\n%s", want, msg)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("àèìòù àèìòù", 8); got != "àèìòù..." {
		t.Fatalf("got %q", got)
	}
	if got := truncateString("corto", 10); got != "corto" {
		t.Fatalf("got %q", got)
	}
}
