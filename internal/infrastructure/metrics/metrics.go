package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// Registry pipeline metrics; implements repository.PipelineRecorder
type Registry struct {
	reg         *prometheus.Registry
	Runs        *prometheus.CounterVec
	RowsLoaded  *prometheus.CounterVec
	RowsSkipped *prometheus.CounterVec
	JoinedRows  prometheus.Counter
	Issues      *prometheus.CounterVec
	Statuses    *prometheus.CounterVec
	RunSeconds  prometheus.Histogram
}

// New registry with the pipeline collectors registered
func New() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricemon_runs_total",
		Help: "Pipeline runs by final state.",
	}, []string{"state"})
	loaded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricemon_rows_loaded_total",
		Help: "Canonical rows produced per source role.",
	}, []string{"role"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricemon_rows_skipped_total",
		Help: "Malformed or dropped rows per source role.",
	}, []string{"role"})
	joined := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricemon_joined_rows_total",
		Help: "Rows produced by the join.",
	})
	issues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricemon_issues_total",
		Help: "Report issues by kind.",
	}, []string{"kind"})
	statuses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricemon_rows_by_status_total",
		Help: "Joined rows by competitiveness status.",
	}, []string{"status"})
	runSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricemon_run_seconds",
		Help:    "Pipeline run duration.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(runs, loaded, skipped, joined, issues, statuses, runSeconds)
	return &Registry{
		reg:         r,
		Runs:        runs,
		RowsLoaded:  loaded,
		RowsSkipped: skipped,
		JoinedRows:  joined,
		Issues:      issues,
		Statuses:    statuses,
		RunSeconds:  runSeconds,
	}
}

// ObserveRun records one finished run
func (r *Registry) ObserveRun(report *entity.Report, elapsed time.Duration) {
	r.Runs.WithLabelValues(string(report.State)).Inc()
	r.RunSeconds.Observe(elapsed.Seconds())
	for _, s := range report.Sources {
		r.RowsLoaded.WithLabelValues(s.Role).Add(float64(s.Rows))
		r.RowsSkipped.WithLabelValues(s.Role).Add(float64(s.Skipped + s.Dropped))
	}
	for _, is := range report.Issues {
		r.Issues.WithLabelValues(string(is.Kind)).Inc()
	}
	r.JoinedRows.Add(float64(len(report.Rows)))
	for _, row := range report.Rows {
		r.Statuses.WithLabelValues(row.Status.Code()).Inc()
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
