// Package report renders job results for human consumption: a markdown
// summary embedded in the result, and an XLSX workbook for export.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/forensics-cli/internal/model"
)

// Markdown renders a forensic summary of one completed analysis.
func Markdown(req model.AnalysisRequest, res *model.JobResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Forensic Analysis: %s\n\n", req.CompanyID)
	fmt.Fprintf(&b, "Periods analyzed: %d\n\n", res.Metrics.Periods)

	writeRiskSection(&b, res.Risk)
	writeRatioSection(&b, res.Metrics.Ratios)
	writeScoreSection(&b, res.Metrics)
	writeAnomalySection(&b, res.Metrics.Anomalies)
	writeBenchmarkSection(&b, res.Benchmarks)

	return b.String()
}

func writeRiskSection(b *strings.Builder, risk model.RiskResult) {
	fmt.Fprintf(b, "## Risk Assessment\n\n")
	fmt.Fprintf(b, "**Composite score: %.1f — %s**\n\n", risk.CompositeScore, strings.ToUpper(string(risk.Level)))
	fmt.Fprintf(b, "| Category | Score | Signals |\n|---|---|---|\n")
	for _, cat := range model.Categories() {
		cs := risk.CategoryScores[cat]
		fmt.Fprintf(b, "| %s | %.0f | %s |\n", cat, cs.Score, joinOrDash(cs.Signals))
	}
	b.WriteString("\n")
}

func writeRatioSection(b *strings.Builder, r model.Ratios) {
	fmt.Fprintf(b, "## Key Ratios\n\n")
	fmt.Fprintf(b, "| Ratio | Value |\n|---|---|\n")
	rows := []struct {
		name string
		m    model.Metric
	}{
		{"Current ratio", r.Current},
		{"Quick ratio", r.Quick},
		{"Cash ratio", r.Cash},
		{"Net margin %", r.NetMarginPct},
		{"ROA %", r.ROAPct},
		{"ROE %", r.ROEPct},
		{"Debt / equity", r.DebtToEquity},
		{"Asset turnover", r.AssetTurnover},
	}
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", row.name, metricCell(row.m))
	}
	b.WriteString("\n")
}

func writeScoreSection(b *strings.Builder, m model.MetricBundle) {
	fmt.Fprintf(b, "## Forensic Scores\n\n")
	if m.ZScore.Score.Valid {
		fmt.Fprintf(b, "- Altman Z-Score: %.2f (%s)\n", m.ZScore.Score.Value, m.ZScore.Class)
	} else {
		fmt.Fprintf(b, "- Altman Z-Score: unavailable\n")
	}
	if m.MScore.Score.Valid {
		fmt.Fprintf(b, "- Beneish M-Score: %.2f (%s)\n", m.MScore.Score.Value, m.MScore.Class)
	} else {
		fmt.Fprintf(b, "- Beneish M-Score: unavailable\n")
	}
	if m.Sloan.Pct.Valid {
		fmt.Fprintf(b, "- Sloan accrual ratio: %.2f%% (%s)\n", m.Sloan.Pct.Value, m.Sloan.Risk)
	} else {
		fmt.Fprintf(b, "- Sloan accrual ratio: unavailable\n")
	}
	if m.Benford.Compliance.Valid {
		fmt.Fprintf(b, "- Benford compliance: %.1f over %d samples\n", m.Benford.Compliance.Value, m.Benford.Samples)
	} else {
		fmt.Fprintf(b, "- Benford compliance: unavailable\n")
	}
	b.WriteString("\n")
}

func writeAnomalySection(b *strings.Builder, anomalies []model.Anomaly) {
	fmt.Fprintf(b, "## Anomaly Flags\n\n")
	if len(anomalies) == 0 {
		b.WriteString("No anomalies detected.\n\n")
		return
	}
	for _, a := range anomalies {
		fmt.Fprintf(b, "- **[%s]** %s: %s\n", strings.ToUpper(string(a.Severity)), a.Metric, a.Description)
	}
	b.WriteString("\n")
}

func writeBenchmarkSection(b *strings.Builder, signals []model.BenchmarkSignal) {
	if len(signals) == 0 {
		return
	}
	fmt.Fprintf(b, "## Benchmark Deviations\n\n")
	fmt.Fprintf(b, "| Ratio | Company | Baseline | Deviation %% |\n|---|---|---|---|\n")
	for _, s := range signals {
		fmt.Fprintf(b, "| %s | %.2f | %.2f | %+.1f |\n", s.Ratio, s.Company, s.Baseline, s.DeviationPct)
	}
	b.WriteString("\n")
}

func metricCell(m model.Metric) string {
	if !m.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Value)
}

func joinOrDash(signals []string) string {
	if len(signals) == 0 {
		return "-"
	}
	sorted := append([]string(nil), signals...)
	sort.Strings(sorted)
	return strings.Join(sorted, "; ")
}
