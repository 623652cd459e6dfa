package telegram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/usecase"
)

// telegram rejects longer messages
const maxMessageLen = 4000

const previewRows = 25

// buildReportMessage status summary, issue counts and the first rows of the view
func buildReportMessage(report *entity.Report, maxLen int) string {
	switch report.State {
	case entity.StateAwaitingInput:
		return awaitingInputMessage
	case entity.StateEmpty:
		return "⚠️ Nessun prodotto in comune tra inventario e file Keepa.\nControlla gli ASIN (e i siti se JOIN_KEY=asin+site)."
	case entity.StateFailed:
		return "❌ Impossibile generare il report.\n\n" + buildIssuesDigest(report.Issues, 10)
	}

	var sb strings.Builder
	summary := report.Summary()
	fmt.Fprintf(&sb, "📊 Report %s\n", report.GeneratedAt.Format("02/01 15:04"))
	fmt.Fprintf(&sb, "Righe: %d (vista: %d) · chiave: %s\n", len(report.Rows), len(report.View), report.Mode)
	for _, st := range entity.AllStatuses {
		fmt.Fprintf(&sb, "%s %s: %d\n", statusIcon(st), st, summary[st])
	}
	if report.AppliedEdits > 0 {
		fmt.Fprintf(&sb, "✏️ Modifiche applicate: %d\n", report.AppliedEdits)
	}
	if !report.Filter.IsZero() || report.Sort != entity.SortNone {
		fmt.Fprintf(&sb, "🔎 Filtro: %s\n", usecase.DescribeFilter(report.Filter, report.Sort))
	}
	if len(report.Issues) > 0 {
		sb.WriteString("\n" + buildIssueCounts(report.Issues))
	}
	sb.WriteString("\n")

	for i, r := range report.View {
		if i >= previewRows {
			fmt.Fprintf(&sb, "… altre %d righe, usa /export per il file completo\n", len(report.View)-previewRows)
			break
		}
		line := formatRow(r) + "\n"
		if maxLen > 0 && sb.Len()+len(line) > maxLen {
			sb.WriteString("…\n")
			break
		}
		sb.WriteString(line)
	}
	return truncateString(sb.String(), maxLen)
}

func statusIcon(s entity.Status) string {
	switch s {
	case entity.StatusOutOfMarket:
		return "🔴"
	case entity.StatusThinMargin:
		return "🟡"
	case entity.StatusCompetitive:
		return "🟢"
	default:
		return "⚪"
	}
}

func formatRow(r entity.JoinedRecord) string {
	gap := "N/D"
	if r.PercentGap.Valid {
		gap = r.PercentGap.Decimal.StringFixed(2) + "%"
	}
	site := ""
	if r.Site != "" {
		site = " [" + r.Site + "]"
	}
	return fmt.Sprintf("%s %s%s %s\n   %s → %s (%s)",
		statusIcon(r.Status), r.Identifier, site, truncateString(r.Name, 40),
		nonEmpty(entity.FormatPrice(r.ListedPrice), "-"),
		nonEmpty(entity.FormatPrice(r.ReferencePrice), "-"),
		gap)
}

// buildIssueCounts one line per issue kind, most frequent first
func buildIssueCounts(issues []entity.Issue) string {
	counts := make(map[entity.IssueKind]int)
	for _, is := range issues {
		counts[is.Kind]++
	}
	kinds := make([]entity.IssueKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if counts[kinds[i]] != counts[kinds[j]] {
			return counts[kinds[i]] > counts[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})

	var sb strings.Builder
	sb.WriteString("⚠️ Avvisi:\n")
	for _, k := range kinds {
		fmt.Fprintf(&sb, "  • %s: %d\n", k, counts[k])
	}
	return sb.String()
}

func buildIssuesDigest(issues []entity.Issue, limit int) string {
	var sb strings.Builder
	for i, is := range issues {
		if i >= limit {
			fmt.Fprintf(&sb, "… altri %d avvisi\n", len(issues)-limit)
			break
		}
		sb.WriteString("• " + truncateString(is.String(), 300) + "\n")
	}
	return sb.String()
}

// buildHistogramMessage text bars, longest bar = 20 blocks
func buildHistogramMessage(bins []usecase.HistogramBin) string {
	if len(bins) == 0 {
		return "Nessuna differenza percentuale calcolabile."
	}
	peak := 0
	for _, b := range bins {
		if b.Count > peak {
			peak = b.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("📈 Distribuzione della differenza percentuale\n")
	for _, b := range bins {
		width := 0
		if peak > 0 {
			width = b.Count * 20 / peak
		}
		if b.Count > 0 && width == 0 {
			width = 1
		}
		fmt.Fprintf(&sb, "%7.1f…%7.1f │%s %d\n", b.Lower, b.Upper, strings.Repeat("█", width), b.Count)
	}
	return sb.String()
}

// buildHistoryMessage lowest / 90 day average / highest per row
func buildHistoryMessage(report *entity.Report, maxLen int) string {
	if !report.HasHistory {
		return "ℹ️ I dati storici non sono disponibili nel file Keepa."
	}
	rows := usecase.PriceHistory(report.View)
	if len(rows) == 0 {
		return "ℹ️ Nessun prodotto della vista ha dati storici."
	}

	var sb strings.Builder
	sb.WriteString("🕘 Storico prezzi (min / media 90gg / max)\n\n")
	for _, r := range rows {
		v := r.HistoryValues()
		line := fmt.Sprintf("%s %s\n   %s / %s / %s\n", v[0], truncateString(v[1], 40),
			nonEmpty(v[2], "-"), nonEmpty(v[3], "-"), nonEmpty(v[4], "-"))
		if maxLen > 0 && sb.Len()+len(line) > maxLen {
			sb.WriteString("…\n")
			break
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func buildUploadMessage(stats *entity.SourceStats, session string) string {
	role := "Inventario"
	if stats.Role == "reference" {
		role = "File Keepa"
		if stats.Site != "" {
			role += " " + stats.Site
		}
	}
	msg := fmt.Sprintf("✅ %s caricato: %s\n📦 Righe: %d", role, stats.Source, stats.Rows)
	if stats.Skipped > 0 {
		msg += fmt.Sprintf("\n⚠️ Righe scartate: %d", stats.Skipped)
	}
	if stats.Delimiter != "" {
		msg += fmt.Sprintf("\n📄 %s, separatore %q, %s", stats.Format, stats.Delimiter, stats.Encoding)
	}
	if session != "" {
		msg += "\n\n" + session
	}
	return msg
}

func nonEmpty(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
