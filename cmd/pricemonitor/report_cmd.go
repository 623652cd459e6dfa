package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/config"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/usecase"
)

// referenceFlags repeated -reference [SITE=]path
type referenceFlags []referenceArg

type referenceArg struct {
	Site string
	Path string
}

func (r *referenceFlags) String() string {
	parts := make([]string, len(*r))
	for i, a := range *r {
		parts[i] = a.Path
	}
	return strings.Join(parts, ",")
}

func (r *referenceFlags) Set(v string) error {
	arg, err := parseReferenceArg(v)
	if err != nil {
		return err
	}
	*r = append(*r, arg)
	return nil
}

// parseReferenceArg "DE=keepa_de.csv" or "keepa.csv"; a prefix containing a
// path separator is part of the path
func parseReferenceArg(v string) (referenceArg, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return referenceArg{}, errors.New("empty reference path")
	}
	site, path, found := strings.Cut(v, "=")
	if !found || site == "" || strings.ContainsAny(site, `/\`) {
		return referenceArg{Path: v}, nil
	}
	if path == "" {
		return referenceArg{}, fmt.Errorf("missing path after %q", site+"=")
	}
	return referenceArg{Site: site, Path: path}, nil
}

type reportFlags struct {
	inventory  string
	encoding   string
	references referenceFlags
	join       string

	sites, statuses, flags, name string
	qtyMin, qtyMax               string
	gapMin, gapMax               string
	sort                         string

	align       bool
	alignOffset string
	setPrice    string

	csvPath, xlsxPath, sqlitePath string
	histogram, history            bool
	limit                         int
}

func newReportFlagSet(f *reportFlags, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&f.inventory, "inventory", "", "inventory file (Ready Pro CSV or xlsx)")
	fs.StringVar(&f.encoding, "encoding", "", "inventory text encoding (utf-8, windows-1252, iso-8859-1, iso-8859-15)")
	fs.Var(&f.references, "reference", "Keepa file, [SITE=]path, repeatable")
	fs.StringVar(&f.join, "join", "", "join key: asin or asin+site (default from JOIN_KEY)")

	fs.StringVar(&f.sites, "site", "", "comma separated sites")
	fs.StringVar(&f.statuses, "status", "", "comma separated statuses (fuori, margine, competitivo, n/d)")
	fs.StringVar(&f.flags, "flag", "", "comma separated listing states (Stato column)")
	fs.StringVar(&f.name, "name", "", "case-insensitive product name search")
	fs.StringVar(&f.qtyMin, "qty-min", "", "minimum quantity")
	fs.StringVar(&f.qtyMax, "qty-max", "", "maximum quantity")
	fs.StringVar(&f.gapMin, "gap-min", "", "minimum percent gap")
	fs.StringVar(&f.gapMax, "gap-max", "", "maximum percent gap")
	fs.StringVar(&f.sort, "sort", "", "sort by gap: asc or desc")

	fs.BoolVar(&f.align, "align", false, "set the listed price to the Amazon price for the filtered rows")
	fs.StringVar(&f.alignOffset, "align-offset", "", "set the listed price to the Amazon price minus N for the filtered rows")
	fs.StringVar(&f.setPrice, "set-price", "", "set the listed price to N for the filtered rows")

	fs.StringVar(&f.csvPath, "csv", "", "write the report as CSV")
	fs.StringVar(&f.xlsxPath, "xlsx", "", "write the report as Excel")
	fs.StringVar(&f.sqlitePath, "sqlite", "", "write the report as a SQLite database")
	fs.BoolVar(&f.histogram, "histogram", false, "print the gap distribution")
	fs.BoolVar(&f.history, "history", false, "print the Keepa price history")
	fs.IntVar(&f.limit, "limit", 50, "rows printed to stdout (0 = all)")
	return fs
}

// viewArgs flags in the key=value form shared with the bot and the API
func (f *reportFlags) viewArgs() map[string][]string {
	args := make(map[string][]string)
	add := func(key, val string) {
		if strings.TrimSpace(val) != "" {
			args[key] = append(args[key], val)
		}
	}
	add("site", f.sites)
	add("status", f.statuses)
	add("flag", f.flags)
	add("name", f.name)
	add("qty_min", f.qtyMin)
	add("qty_max", f.qtyMax)
	add("gap_min", f.gapMin)
	add("gap_max", f.gapMax)
	add("sort", f.sort)
	return args
}

// edit at most one bulk edit per invocation, over the filter
func (f *reportFlags) edit(filter entity.Filter) (*entity.Edit, error) {
	set := 0
	edit := &entity.Edit{ID: uuid.New().String(), Filter: filter, CreatedAt: time.Now()}
	if f.align {
		set++
		edit.Kind = entity.EditAlign
	}
	for _, opt := range []struct {
		raw  string
		kind entity.EditKind
	}{{f.alignOffset, entity.EditAlignOffset}, {f.setPrice, entity.EditSetPrice}} {
		if opt.raw == "" {
			continue
		}
		set++
		amount, err := decimal.NewFromString(strings.ReplaceAll(opt.raw, ",", "."))
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", opt.raw)
		}
		edit.Kind = opt.kind
		edit.Amount = amount
	}
	switch set {
	case 0:
		return nil, nil
	case 1:
		return edit, edit.Validate()
	}
	return nil, errors.New("-align, -align-offset and -set-price are mutually exclusive")
}

func runReport(ctx context.Context, cfg *config.Config, argv []string, out io.Writer) error {
	var f reportFlags
	fs := newReportFlagSet(&f, os.Stderr)
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if f.inventory == "" || len(f.references) == 0 {
		fs.Usage()
		return errors.New("-inventory and at least one -reference are required")
	}
	if f.join != "" {
		mode, err := entity.ParseJoinMode(f.join)
		if err != nil {
			return err
		}
		cfg.JoinMode = mode
	}

	filter, order, err := usecase.ParseViewArgs(f.viewArgs())
	if err != nil {
		return err
	}
	edit, err := f.edit(filter)
	if err != nil {
		return err
	}

	in := usecase.ReportInputs{Filter: filter, Sort: order}
	inv, err := readSource(f.inventory, "")
	if err != nil {
		return err
	}
	inv.Encoding = f.encoding
	in.Inventory = &inv
	for _, ref := range f.references {
		src, err := readSource(ref.Path, ref.Site)
		if err != nil {
			return err
		}
		in.References = append(in.References, src)
	}
	if edit != nil {
		in.Edits = []entity.Edit{*edit}
	}

	reports := newReportUseCase(cfg, nil)
	report, err := reports.Run(ctx, in)
	if report != nil {
		printReport(out, report, f.limit)
	}
	if err != nil {
		return err
	}
	if report.State != entity.StateReady {
		return nil
	}

	if f.histogram {
		printHistogram(out, usecase.Histogram(report.View, cfg.HistogramBins))
	}
	if f.history {
		printHistory(out, report)
	}

	for format, path := range map[string]string{"csv": f.csvPath, "xlsx": f.xlsxPath, "sqlite": f.sqlitePath} {
		if path == "" {
			continue
		}
		data, _, err := reports.Export(ctx, report, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Printf("✅ %s written to %s (%d rows)", format, path, len(report.View))
	}
	return nil
}

func readSource(path, site string) (entity.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.SourceFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return entity.SourceFile{Name: filepath.Base(path), Data: data, Site: site}, nil
}

func printReport(out io.Writer, report *entity.Report, limit int) {
	fmt.Fprintf(out, "Run %s · state %s · join key %s\n", report.RunID, report.State, report.Mode)
	for _, s := range report.Sources {
		fmt.Fprintf(out, "  %-9s %s: %d rows, %d skipped, %d dropped\n", s.Role, s.Source, s.Rows, s.Skipped, s.Dropped)
	}
	if report.State != entity.StateReady {
		for _, is := range report.Issues {
			fmt.Fprintf(out, "  ! %s\n", is)
		}
		return
	}

	summary := report.Summary()
	fmt.Fprintf(out, "Rows %d (view %d), edits applied %d\n", len(report.Rows), len(report.View), report.AppliedEdits)
	for _, st := range entity.AllStatuses {
		fmt.Fprintf(out, "  %-22s %d\n", st, summary[st])
	}
	if n := len(report.Issues); n > 0 {
		fmt.Fprintf(out, "Issues: %d\n", n)
		for _, kind := range []entity.IssueKind{
			entity.IssueMissingColumn, entity.IssueMalformedRow, entity.IssueUnparsablePrice,
			entity.IssueInvalidQuantity, entity.IssueMissingIdentifier, entity.IssueUnresolvedRegion,
			entity.IssueUndefinedGap, entity.IssueLoadFailed, entity.IssueInvalidEdit,
		} {
			if c := report.IssueCount(kind); c > 0 {
				fmt.Fprintf(out, "  %-20s %d\n", kind, c)
			}
		}
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(entity.DisplayColumns, "\t"))
	for i, r := range report.View {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "... %d more rows\n", len(report.View)-limit)
			break
		}
		fmt.Fprintln(w, strings.Join(r.DisplayValues(), "\t"))
	}
	w.Flush()
}

func printHistogram(out io.Writer, bins []usecase.HistogramBin) {
	fmt.Fprintln(out, "\nGap distribution (%)")
	if len(bins) == 0 {
		fmt.Fprintln(out, "  no defined gap")
		return
	}
	for _, b := range bins {
		fmt.Fprintf(out, "  %8.2f .. %8.2f  %s %d\n", b.Lower, b.Upper, strings.Repeat("#", min(b.Count, 60)), b.Count)
	}
}

func printHistory(out io.Writer, report *entity.Report) {
	fmt.Fprintln(out, "\nPrice history")
	if !report.HasHistory {
		fmt.Fprintln(out, "  history columns are not available in the Keepa files")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(entity.HistoryColumns, "\t"))
	for _, r := range usecase.PriceHistory(report.View) {
		fmt.Fprintln(w, strings.Join(r.HistoryValues(), "\t"))
	}
	w.Flush()
}
