package rest

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/usecase"
)

type rowResponse struct {
	ASIN           string              `json:"asin"`
	Name           string              `json:"name"`
	SKU            string              `json:"sku,omitempty"`
	Site           string              `json:"site,omitempty"`
	Flag           string              `json:"flag,omitempty"`
	Quantity       *int                `json:"quantity"`
	ListedPrice    decimal.NullDecimal `json:"listed_price"`
	ReferencePrice decimal.NullDecimal `json:"reference_price"`
	PercentGap     decimal.NullDecimal `json:"percent_gap"`
	Status         string              `json:"status"`
	StatusLabel    string              `json:"status_label"`
	LowestPrice    decimal.NullDecimal `json:"lowest_price"`
	Avg90Price     decimal.NullDecimal `json:"avg90_price"`
	HighestPrice   decimal.NullDecimal `json:"highest_price"`
}

type issueResponse struct {
	Kind   entity.IssueKind `json:"kind"`
	Source string           `json:"source,omitempty"`
	Row    int              `json:"row,omitempty"`
	Field  string           `json:"field,omitempty"`
	Detail string           `json:"detail,omitempty"`
}

type sourceResponse struct {
	Source    string `json:"source"`
	Role      string `json:"role"`
	Format    string `json:"format,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
	Encoding  string `json:"encoding,omitempty"`
	Site      string `json:"site,omitempty"`
	Rows      int    `json:"rows"`
	Skipped   int    `json:"skipped"`
	Dropped   int    `json:"dropped"`
}

type reportResponse struct {
	RunID        string                 `json:"run_id"`
	GeneratedAt  time.Time              `json:"generated_at"`
	State        entity.ReportState     `json:"state"`
	JoinKey      string                 `json:"join_key"`
	Filter       string                 `json:"filter"`
	Summary      map[string]int         `json:"summary"`
	Rows         []rowResponse          `json:"rows"`
	TotalRows    int                    `json:"total_rows"`
	AppliedEdits int                    `json:"applied_edits"`
	HasHistory   bool                   `json:"has_history"`
	Histogram    []usecase.HistogramBin `json:"histogram,omitempty"`
	Issues       []issueResponse        `json:"issues"`
	Sources      []sourceResponse       `json:"sources"`
}

// editRequest one element of the "edits" form field
type editRequest struct {
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
	Filter string `json:"filter"` // same syntax as the query filters: "site=IT status=fuori"
}

func newReportResponse(report *entity.Report, bins int) reportResponse {
	resp := reportResponse{
		RunID:        report.RunID,
		GeneratedAt:  report.GeneratedAt,
		State:        report.State,
		JoinKey:      report.Mode.String(),
		Filter:       usecase.DescribeFilter(report.Filter, report.Sort),
		Summary:      make(map[string]int, len(entity.AllStatuses)),
		Rows:         make([]rowResponse, 0, len(report.View)),
		TotalRows:    len(report.Rows),
		AppliedEdits: report.AppliedEdits,
		HasHistory:   report.HasHistory,
		Issues:       make([]issueResponse, 0, len(report.Issues)),
		Sources:      make([]sourceResponse, 0, len(report.Sources)),
	}
	for st, n := range report.Summary() {
		resp.Summary[st.Code()] = n
	}
	for _, r := range report.View {
		resp.Rows = append(resp.Rows, rowResponse{
			ASIN:           r.Identifier,
			Name:           r.Name,
			SKU:            r.SKU,
			Site:           r.Site,
			Flag:           r.StatusFlag,
			Quantity:       r.Quantity,
			ListedPrice:    r.ListedPrice,
			ReferencePrice: r.ReferencePrice,
			PercentGap:     roundGap(r.PercentGap),
			Status:         r.Status.Code(),
			StatusLabel:    r.Status.String(),
			LowestPrice:    r.LowestPrice,
			Avg90Price:     r.Avg90Price,
			HighestPrice:   r.HighestPrice,
		})
	}
	if report.State == entity.StateReady {
		resp.Histogram = usecase.Histogram(report.View, bins)
	}
	for _, is := range report.Issues {
		resp.Issues = append(resp.Issues, issueResponse(is))
	}
	for _, s := range report.Sources {
		resp.Sources = append(resp.Sources, sourceResponse(s))
	}
	return resp
}

func roundGap(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(2))
}
