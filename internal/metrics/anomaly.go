package metrics

import (
	"fmt"

	"github.com/sells-group/forensics-cli/internal/model"
)

// detectAnomalies runs the rule-based pass over the computed sub-metrics.
// Every rule is independently evaluable: a rule whose inputs are unavailable
// simply doesn't fire. Rules run in a fixed order so the output is
// deterministic.
func (e *Engine) detectAnomalies(b model.MetricBundle) []model.Anomaly {
	var out []model.Anomaly

	// Revenue decline beyond the configured threshold.
	if g, ok := b.Horizontal.Growth[model.FieldRevenue]; ok && g.Valid {
		decline := -g.Value
		if decline > e.anomaly.RevenueDeclinePct {
			out = append(out, model.Anomaly{
				Metric:      "revenue_growth",
				Severity:    declineSeverity(decline),
				Description: fmt.Sprintf("revenue declined %.1f%% period over period", decline),
			})
		}
	}

	// Net income and operating cash flow diverging: profits growing while
	// cash generation shrinks is a classic accrual-manipulation tell.
	niGrowth, niOK := b.Horizontal.Growth[model.FieldNetIncome]
	ocfGrowth, ocfOK := b.Horizontal.Growth[model.FieldOperatingCashFlow]
	if niOK && ocfOK && niGrowth.Valid && ocfGrowth.Valid {
		gap := niGrowth.Value - ocfGrowth.Value
		if niGrowth.Value > 0 && gap > e.anomaly.ProfitCashGapPct {
			out = append(out, model.Anomaly{
				Metric:      "profit_cash_divergence",
				Severity:    gapSeverity(gap, e.anomaly.ProfitCashGapPct),
				Description: fmt.Sprintf("net income growth outpaces operating cash flow growth by %.1f points", gap),
			})
		}
	}

	// Receivables growing faster than revenue: sales may be booked ahead of
	// collectability.
	recGrowth, recOK := b.Horizontal.Growth[model.FieldAccountsReceivable]
	revGrowth, revOK := b.Horizontal.Growth[model.FieldRevenue]
	if recOK && revOK && recGrowth.Valid && revGrowth.Valid {
		gap := recGrowth.Value - revGrowth.Value
		if gap > e.anomaly.ReceivablesGapPct {
			out = append(out, model.Anomaly{
				Metric:      "receivables_vs_revenue",
				Severity:    gapSeverity(gap, e.anomaly.ReceivablesGapPct),
				Description: fmt.Sprintf("receivables growth outpaces revenue growth by %.1f points", gap),
			})
		}
	}

	// Liquidity below water.
	if b.Ratios.Current.Valid && b.Ratios.Current.Value < 1.0 {
		sev := model.SeverityMedium
		if b.Ratios.Current.Value < 0.5 {
			sev = model.SeverityHigh
		}
		out = append(out, model.Anomaly{
			Metric:      "current_ratio",
			Severity:    sev,
			Description: fmt.Sprintf("current ratio %.2f below 1.0", b.Ratios.Current.Value),
		})
	}

	// Composite score flags.
	if b.ZScore.Score.Valid && b.ZScore.Class == model.ZDistress {
		out = append(out, model.Anomaly{
			Metric:      "z_score",
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("Altman Z-Score %.2f in distress zone", b.ZScore.Score.Value),
		})
	}
	if b.MScore.Score.Valid && b.MScore.Class == model.MManipulator {
		out = append(out, model.Anomaly{
			Metric:      "m_score",
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("Beneish M-Score %.2f indicates likely earnings manipulation", b.MScore.Score.Value),
		})
	}
	if b.Sloan.Pct.Valid && b.Sloan.Risk == model.AccrualHigh {
		out = append(out, model.Anomaly{
			Metric:      "sloan_ratio",
			Severity:    model.SeverityHigh,
			Description: fmt.Sprintf("Sloan ratio %.1f%% indicates high accrual risk", b.Sloan.Pct.Value),
		})
	}
	if b.Benford.Anomalous {
		out = append(out, model.Anomaly{
			Metric:      "benford",
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("leading-digit distribution deviates from Benford's Law (compliance %.1f)", b.Benford.Compliance.Value),
		})
	}

	return out
}

// declineSeverity bands a revenue decline percentage.
func declineSeverity(decline float64) model.Severity {
	switch {
	case decline > 50:
		return model.SeverityCritical
	case decline > 35:
		return model.SeverityHigh
	case decline > 25:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// gapSeverity bands a divergence gap relative to its firing threshold.
func gapSeverity(gap, threshold float64) model.Severity {
	switch {
	case gap > threshold*3:
		return model.SeverityCritical
	case gap > threshold*2:
		return model.SeverityHigh
	case gap > threshold*1.5:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
