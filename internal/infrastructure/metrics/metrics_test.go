package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

func TestObserveRun(t *testing.T) {
	reg := New()
	reg.ObserveRun(&entity.Report{
		State: entity.StateReady,
		Sources: []entity.SourceStats{
			{Role: "inventory", Rows: 10, Skipped: 1, Dropped: 2},
			{Role: "reference", Rows: 8},
		},
		Issues: []entity.Issue{{Kind: entity.IssueUndefinedGap}, {Kind: entity.IssueUndefinedGap}},
		Rows: []entity.JoinedRecord{
			{Status: entity.StatusCompetitive},
			{Status: entity.StatusUndefined},
			{Status: entity.StatusCompetitive},
		},
	}, 150*time.Millisecond)
	reg.ObserveRun(&entity.Report{State: entity.StateAwaitingInput}, time.Millisecond)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"ready runs", testutil.ToFloat64(reg.Runs.WithLabelValues("ready")), 1},
		{"awaiting runs", testutil.ToFloat64(reg.Runs.WithLabelValues("awaiting_input")), 1},
		{"inventory rows", testutil.ToFloat64(reg.RowsLoaded.WithLabelValues("inventory")), 10},
		{"inventory skipped", testutil.ToFloat64(reg.RowsSkipped.WithLabelValues("inventory")), 3},
		{"joined", testutil.ToFloat64(reg.JoinedRows), 3},
		{"undefined gaps", testutil.ToFloat64(reg.Issues.WithLabelValues("undefined_gap")), 2},
		{"competitive", testutil.ToFloat64(reg.Statuses.WithLabelValues("competitive")), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestHandler(t *testing.T) {
	reg := New()
	reg.ObserveRun(&entity.Report{State: entity.StateEmpty}, time.Millisecond)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `pricemon_runs_total{state="empty"} 1`) {
		t.Fatalf("metrics output missing run counter:\n%s", body)
	}
}
