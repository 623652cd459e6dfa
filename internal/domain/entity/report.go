package entity

import (
	"fmt"
	"time"
)

// ReportState outcome of one pipeline run
type ReportState string

const (
	StateAwaitingInput ReportState = "awaiting_input"
	StateReady         ReportState = "ready"
	StateEmpty         ReportState = "empty"
	StateFailed        ReportState = "failed"
)

// IssueKind category of a recoverable problem
type IssueKind string

const (
	IssueMissingColumn     IssueKind = "missing_column"
	IssueMalformedRow      IssueKind = "malformed_row"
	IssueUnparsablePrice   IssueKind = "unparsable_price"
	IssueInvalidQuantity   IssueKind = "invalid_quantity"
	IssueMissingIdentifier IssueKind = "missing_identifier"
	IssueUnresolvedRegion  IssueKind = "unresolved_region"
	IssueEmptyJoinResult   IssueKind = "empty_join_result"
	IssueUndefinedGap      IssueKind = "undefined_gap"
	IssueLoadFailed        IssueKind = "load_failed"
	IssueInvalidEdit       IssueKind = "invalid_edit"
)

// Issue one degraded row, field or source
type Issue struct {
	Kind   IssueKind
	Source string
	Row    int // 0 when the issue is not tied to a row
	Field  string
	Detail string
}

func (i Issue) String() string {
	s := string(i.Kind)
	if i.Source != "" {
		s += " [" + i.Source
		if i.Row > 0 {
			s += fmt.Sprintf(":%d", i.Row)
		}
		s += "]"
	}
	if i.Field != "" {
		s += " " + i.Field
	}
	if i.Detail != "" {
		s += ": " + i.Detail
	}
	return s
}

// SourceStats load statistics of one input file
type SourceStats struct {
	Source    string
	Role      string // "inventory" or "reference"
	Format    string
	Delimiter string
	Encoding  string
	Site      string
	Rows      int // canonical records produced
	Skipped   int // malformed rows skipped by the loader
	Dropped   int // rows dropped after mapping (no identifier, unresolved region)
}

// StatusSummary row count per status
type StatusSummary map[Status]int

// Report result of one pipeline run
type Report struct {
	RunID        string
	GeneratedAt  time.Time
	Mode         JoinMode
	Thresholds   Thresholds
	State        ReportState
	Rows         []JoinedRecord // full table after edits
	View         []JoinedRecord // filtered and sorted rows
	Filter       Filter
	Sort         SortOrder
	Issues       []Issue
	Sources      []SourceStats
	AppliedEdits int
	HasHistory   bool
}

// IssueCount issues of one kind
func (r *Report) IssueCount(kind IssueKind) int {
	n := 0
	for _, is := range r.Issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}

// Summary status counts over the view
func (r *Report) Summary() StatusSummary {
	summary := make(StatusSummary, len(AllStatuses))
	for _, row := range r.View {
		summary[row.Status]++
	}
	return summary
}
