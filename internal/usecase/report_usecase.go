package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/domain/repository"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
)

// ReportInputs everything one run depends on; nothing else is carried between runs
type ReportInputs struct {
	Inventory  *entity.SourceFile
	References []entity.SourceFile
	Edits      []entity.Edit
	Filter     entity.Filter
	Sort       entity.SortOrder
}

// ReportOptions pipeline configuration
type ReportOptions struct {
	Mode              entity.JoinMode
	Thresholds        entity.Thresholds
	DefaultSite       string // region for reference files without site column
	InventoryEncoding string // charset when the inventory file does not declare one
}

// ReportUseCase price monitoring pipeline
type ReportUseCase interface {
	// Run load -> map -> join -> classify -> edits -> view
	Run(ctx context.Context, in ReportInputs) (*entity.Report, error)

	// Export the report view in the given format ("csv", "xlsx", "sqlite")
	Export(ctx context.Context, report *entity.Report, format string) ([]byte, repository.Exporter, error)

	// Formats available export formats
	Formats() []string
}

type reportUseCase struct {
	loader    repository.TableLoader
	exporters map[string]repository.Exporter
	recorder  repository.PipelineRecorder
	opts      ReportOptions
}

// NewReportUseCase recorder may be nil
func NewReportUseCase(
	loader repository.TableLoader,
	exporters []repository.Exporter,
	recorder repository.PipelineRecorder,
	opts ReportOptions,
) ReportUseCase {
	byExt := make(map[string]repository.Exporter, len(exporters))
	for _, e := range exporters {
		byExt[e.Extension()] = e
	}
	return &reportUseCase{
		loader:    loader,
		exporters: byExt,
		recorder:  recorder,
		opts:      opts,
	}
}

// Run one pipeline pass. Degradations end up as report issues; the returned
// error is non-nil only when a blocking step failed, and even then the report
// carries what the independent steps produced.
func (u *reportUseCase) Run(ctx context.Context, in ReportInputs) (*entity.Report, error) {
	start := time.Now()
	report := &entity.Report{
		RunID:       uuid.New().String(),
		GeneratedAt: start,
		Mode:        u.opts.Mode,
		Thresholds:  u.opts.Thresholds,
		Filter:      in.Filter,
		Sort:        in.Sort,
	}
	defer func() {
		if u.recorder != nil {
			u.recorder.ObserveRun(report, time.Since(start))
		}
	}()

	if in.Inventory == nil || len(in.References) == 0 {
		report.State = entity.StateAwaitingInput
		log.Printf("⏳ run %s awaiting input (inventory: %t, references: %d)",
			report.RunID, in.Inventory != nil, len(in.References))
		return report, nil
	}

	// Loading the inventory and each reference file are independent steps
	var failures []error
	products, err := u.loadInventory(ctx, *in.Inventory, report)
	if err != nil {
		failures = append(failures, err)
	}

	var refs []entity.Reference
	loadedRefs := 0
	names := make(map[string]int, len(in.References))
	for _, file := range in.References {
		if n := names[file.Name]; n > 0 {
			file.Name = file.Name + "#" + strconv.Itoa(n+1)
		}
		names[file.Name]++
		fileRefs, err := u.loadReference(ctx, file, report)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		loadedRefs++
		refs = append(refs, fileRefs...)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if loadedRefs == 0 && len(failures) == 0 {
		failures = append(failures, errors.New("no reference file could be loaded"))
	}
	if products == nil || loadedRefs == 0 {
		report.State = entity.StateFailed
		return report, fmt.Errorf("pipeline stopped before join: %w", errors.Join(failures...))
	}

	mode := u.joinMode(products, refs, report)
	report.Mode = mode
	products = u.dropUnjoinable(products, mode, report)
	refs = u.dropUnresolvedRefs(refs, mode, report)

	joined := Join(products, refs, mode)
	log.Printf("🔗 run %s: %d products x %d references -> %d rows (%s)",
		report.RunID, len(products), len(refs), len(joined), mode)
	if len(joined) == 0 {
		report.State = entity.StateEmpty
		report.Issues = append(report.Issues, entity.Issue{
			Kind:   entity.IssueEmptyJoinResult,
			Detail: entity.ErrEmptyJoinResult.Error(),
		})
		return report, nil
	}

	report.Issues = append(report.Issues, Classify(joined, u.opts.Thresholds)...)
	for _, r := range refs {
		if r.HasHistory() {
			report.HasHistory = true
			break
		}
	}

	table := NewTable(joined, mode, u.opts.Thresholds)
	for _, e := range in.Edits {
		n, err := table.ApplyEdit(e)
		if err != nil {
			report.Issues = append(report.Issues, entity.Issue{
				Kind:   entity.IssueInvalidEdit,
				Field:  string(e.Kind),
				Detail: err.Error(),
			})
			continue
		}
		report.AppliedEdits++
		log.Printf("✏️ edit %s (%s %s) changed %d rows", e.ID, e.Kind, e.Amount, n)
	}

	report.Rows = table.Rows()
	report.View = table.View(in.Filter, in.Sort)
	report.State = entity.StateReady
	log.Printf("✅ run %s ready: %d rows, %d in view, %d issues",
		report.RunID, len(report.Rows), len(report.View), len(report.Issues))
	return report, nil
}

// loadInventory returns nil products when the file cannot be used at all
func (u *reportUseCase) loadInventory(ctx context.Context, file entity.SourceFile, report *entity.Report) ([]entity.Product, error) {
	if file.Encoding == "" {
		file.Encoding = u.opts.InventoryEncoding
	}
	table, mapping, err := u.loadAndMap(ctx, file, parser.InventorySchema, "inventory", report)
	if err != nil {
		return nil, err
	}
	products, issues := parser.CanonicalProducts(table, mapping)
	report.Issues = append(report.Issues, issues...)
	stats := &report.Sources[len(report.Sources)-1]
	stats.Rows = len(products)
	stats.Dropped = len(table.Records) - len(products)
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

func (u *reportUseCase) loadReference(ctx context.Context, file entity.SourceFile, report *entity.Report) ([]entity.Reference, error) {
	table, mapping, err := u.loadAndMap(ctx, file, parser.ReferenceSchema, "reference", report)
	if err != nil {
		return nil, err
	}
	refs, issues := parser.CanonicalReferences(table, mapping, file.Site, "")
	report.Issues = append(report.Issues, issues...)
	stats := &report.Sources[len(report.Sources)-1]
	stats.Rows = len(refs)
	stats.Dropped = len(table.Records) - len(refs)
	stats.Site = parser.NormalizeSite(file.Site)
	return refs, nil
}

// loadAndMap appends the source stats and the load/mapping issues to report
func (u *reportUseCase) loadAndMap(ctx context.Context, file entity.SourceFile, schema parser.Schema, role string, report *entity.Report) (*entity.RawTable, parser.MappingResult, error) {
	stats := entity.SourceStats{Source: file.Name, Role: role}

	table, err := u.loader.Load(ctx, file)
	if err != nil {
		report.Sources = append(report.Sources, stats)
		report.Issues = append(report.Issues, entity.Issue{
			Kind:   entity.IssueLoadFailed,
			Source: file.Name,
			Detail: err.Error(),
		})
		log.Printf("❌ %s %s: %v", role, file.Name, err)
		return nil, parser.MappingResult{}, fmt.Errorf("failed to load %s %s: %w", role, file.Name, err)
	}

	stats.Format = table.Format.String()
	stats.Encoding = table.Encoding
	if table.Delimiter != 0 {
		stats.Delimiter = string(table.Delimiter)
	}
	stats.Skipped = len(table.Skipped)
	report.Sources = append(report.Sources, stats)
	for _, s := range table.Skipped {
		report.Issues = append(report.Issues, entity.Issue{
			Kind:   entity.IssueMalformedRow,
			Source: file.Name,
			Row:    s.Line,
			Detail: s.Reason,
		})
	}

	mapping := parser.MapColumns(file.Name, table.Header, schema)
	for _, missing := range mapping.Missing {
		report.Issues = append(report.Issues, entity.Issue{
			Kind:   entity.IssueMissingColumn,
			Source: file.Name,
			Field:  missing.Field,
			Detail: "expected one of: " + strings.Join(missing.Expected, ", "),
		})
	}
	if err := mapping.Err(); err != nil {
		log.Printf("❌ %s %s: %v", role, file.Name, err)
		return nil, mapping, fmt.Errorf("failed to map %s %s: %w", role, file.Name, err)
	}
	if len(mapping.Absent) > 0 {
		log.Printf("ℹ️ %s %s: optional columns absent: %v", role, file.Name, mapping.Absent)
	}
	return table, mapping, nil
}

// joinMode the configured mode, upgraded to site mode when the reference files
// cover more than one region and the inventory carries sites. Joining regional
// feeds by identifier alone would pair a row with every region's price.
func (u *reportUseCase) joinMode(products []entity.Product, refs []entity.Reference, report *entity.Report) entity.JoinMode {
	if u.opts.Mode == entity.JoinBySite {
		return entity.JoinBySite
	}
	var sites []string
	seen := make(map[string]bool)
	for _, r := range refs {
		if r.Site != "" && !seen[r.Site] {
			seen[r.Site] = true
			sites = append(sites, r.Site)
		}
	}
	if len(sites) < 2 {
		return u.opts.Mode
	}

	inventorySites := false
	for _, p := range products {
		if p.Site != "" {
			inventorySites = true
			break
		}
	}
	issue := entity.Issue{Kind: entity.IssueUnresolvedRegion, Field: string(parser.FieldSite)}
	if !inventorySites {
		issue.Detail = fmt.Sprintf("reference files cover %s but the inventory has no site column; rows may match prices of another region",
			strings.Join(sites, ", "))
		report.Issues = append(report.Issues, issue)
		log.Printf("⚠️ run %s: %s", report.RunID, issue.Detail)
		return u.opts.Mode
	}
	issue.Detail = fmt.Sprintf("reference files cover %s; joining by %s", strings.Join(sites, ", "), entity.JoinBySite)
	report.Issues = append(report.Issues, issue)
	log.Printf("⚠️ run %s: %s", report.RunID, issue.Detail)
	return entity.JoinBySite
}

// dropUnjoinable inventory rows without site cannot join by site
func (u *reportUseCase) dropUnjoinable(products []entity.Product, mode entity.JoinMode, report *entity.Report) []entity.Product {
	if mode != entity.JoinBySite {
		return products
	}
	kept := products[:0:0]
	for _, p := range products {
		if p.Site == "" {
			report.Issues = append(report.Issues, entity.Issue{
				Kind:   entity.IssueUnresolvedRegion,
				Source: p.Source,
				Row:    p.Row,
				Field:  string(parser.FieldSite),
				Detail: p.Identifier,
			})
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// dropUnresolvedRefs rows without a file site or site column take DEFAULT_SITE;
// rows whose region is still unknown are never joined, one issue per source file
func (u *reportUseCase) dropUnresolvedRefs(refs []entity.Reference, mode entity.JoinMode, report *entity.Report) []entity.Reference {
	if mode != entity.JoinBySite {
		return refs
	}
	fallback := parser.NormalizeSite(u.opts.DefaultSite)
	kept := refs[:0:0]
	dropped := make(map[string]int)
	var order []string
	for _, r := range refs {
		if r.Site == "" {
			r.Site = fallback
		}
		if r.Site == "" {
			if dropped[r.Source] == 0 {
				order = append(order, r.Source)
			}
			dropped[r.Source]++
			continue
		}
		kept = append(kept, r)
	}
	for _, src := range order {
		report.Issues = append(report.Issues, entity.Issue{
			Kind:   entity.IssueUnresolvedRegion,
			Source: src,
			Field:  string(parser.FieldSite),
			Detail: fmt.Sprintf("%d rows without region; set the file site or DEFAULT_SITE", dropped[src]),
		})
		for i := range report.Sources {
			if report.Sources[i].Source == src {
				report.Sources[i].Dropped += dropped[src]
			}
		}
	}
	return kept
}

// Export the report view
func (u *reportUseCase) Export(ctx context.Context, report *entity.Report, format string) ([]byte, repository.Exporter, error) {
	exp, ok := u.exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q (available: %s)", entity.ErrUnsupportedExport, format, strings.Join(u.Formats(), ", "))
	}
	if report == nil || report.State != entity.StateReady {
		return nil, nil, fmt.Errorf("failed to export: %w", entity.ErrAwaitingInput)
	}
	data, err := exp.Export(ctx, report.View)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export %s: %w", format, err)
	}
	return data, exp, nil
}

// Formats available export formats
func (u *reportUseCase) Formats() []string {
	var out []string
	for _, ext := range []string{"csv", "xlsx", "sqlite"} {
		if _, ok := u.exporters[ext]; ok {
			out = append(out, ext)
		}
	}
	return out
}
