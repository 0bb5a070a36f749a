// Package scorer aggregates a metric bundle into the six-category weighted
// risk score. Scoring is deterministic and side-effect free: two calls with
// the same bundle produce identical results.
package scorer

import (
	"fmt"
	"math"

	"github.com/sells-group/forensics-cli/internal/model"
)

// CategoryWeights are the fixed aggregation weights; they sum to 1.0.
var CategoryWeights = map[model.RiskCategory]float64{
	model.CategoryFinancialStability: 0.25,
	model.CategoryOperational:        0.15,
	model.CategoryMarket:             0.20,
	model.CategoryCompliance:         0.15,
	model.CategoryLiquidity:          0.10,
	model.CategoryGrowth:             0.15,
}

// Composite cutpoints. Higher composite means higher risk: 80 and above is
// critical, 60-80 high, 40-60 medium, below 40 low.
const (
	cutCritical = 80.0
	cutHigh     = 60.0
	cutMedium   = 40.0
)

// insufficientData marks a category whose inputs were entirely unavailable.
// Such categories sit at the neutral midpoint instead of silently rewarding
// or penalizing missing data.
const insufficientData = "insufficient data"

const neutralScore = 50.0

// Score aggregates the bundle into category scores, the weighted composite,
// and the discrete risk level.
func Score(b model.MetricBundle) model.RiskResult {
	scores := map[model.RiskCategory]model.CategoryScore{
		model.CategoryFinancialStability: scoreFinancialStability(b),
		model.CategoryOperational:        scoreOperational(b),
		model.CategoryMarket:             scoreMarket(b),
		model.CategoryCompliance:         scoreCompliance(b),
		model.CategoryLiquidity:          scoreLiquidity(b),
		model.CategoryGrowth:             scoreGrowth(b),
	}

	composite := 0.0
	for cat, cs := range scores {
		composite += cs.Score * CategoryWeights[cat]
	}
	composite = math.Round(composite*100) / 100

	return model.RiskResult{
		CategoryScores: scores,
		CompositeScore: composite,
		Level:          classify(composite),
	}
}

func classify(composite float64) model.RiskLevel {
	switch {
	case composite >= cutCritical:
		return model.RiskCritical
	case composite >= cutHigh:
		return model.RiskHigh
	case composite >= cutMedium:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// penalty is one fired scoring rule: risk points plus the signal explaining
// them.
type penalty struct {
	points float64
	signal string
}

// buildScore turns fired penalties into a category score. evaluated reports
// whether any rule had usable inputs; when none did, the category defaults to
// the neutral midpoint and carries the insufficient-data signal.
func buildScore(evaluated bool, penalties []penalty) model.CategoryScore {
	if !evaluated {
		return model.CategoryScore{
			Score:   neutralScore,
			Signals: []string{insufficientData},
		}
	}

	total := 0.0
	signals := make([]string, 0, len(penalties))
	for _, p := range penalties {
		total += p.points
		signals = append(signals, p.signal)
	}
	if total > 100 {
		total = 100
	}
	return model.CategoryScore{Score: total, Signals: signals}
}

// scoreFinancialStability penalizes weak margins, weak returns on equity and
// a distressed or grey Altman zone.
func scoreFinancialStability(b model.MetricBundle) model.CategoryScore {
	var penalties []penalty
	evaluated := false

	if m := b.Ratios.NetMarginPct; m.Valid {
		evaluated = true
		if m.Value < 0 {
			penalties = append(penalties, penalty{35, fmt.Sprintf("net margin negative (%.1f%%)", m.Value)})
		} else if m.Value < 5 {
			penalties = append(penalties, penalty{20, fmt.Sprintf("net margin below 5%% (%.1f%%)", m.Value)})
		}
	}
	if r := b.Ratios.ROEPct; r.Valid {
		evaluated = true
		if r.Value < 10 {
			penalties = append(penalties, penalty{15, fmt.Sprintf("return on equity below 10%% (%.1f%%)", r.Value)})
		}
	}
	if z := b.ZScore; z.Score.Valid {
		evaluated = true
		switch z.Class {
		case model.ZDistress:
			penalties = append(penalties, penalty{30, fmt.Sprintf("Z-Score %.2f in distress zone", z.Score.Value)})
		case model.ZGrey:
			penalties = append(penalties, penalty{15, fmt.Sprintf("Z-Score %.2f in grey zone", z.Score.Value)})
		}
	}
	if d := b.Ratios.DebtToEquity; d.Valid {
		evaluated = true
		if d.Value > 2 {
			penalties = append(penalties, penalty{15, fmt.Sprintf("debt-to-equity above 2.0 (%.2f)", d.Value)})
		}
	}

	return buildScore(evaluated, penalties)
}

// scoreOperational penalizes weak asset utilization and thin or negative
// operating margins.
func scoreOperational(b model.MetricBundle) model.CategoryScore {
	var penalties []penalty
	evaluated := false

	if t := b.Ratios.AssetTurnover; t.Valid {
		evaluated = true
		if t.Value < 0.5 {
			penalties = append(penalties, penalty{20, fmt.Sprintf("asset turnover below 0.5 (%.2f)", t.Value)})
		}
	}
	if op, ok := b.Vertical.OfRevenue[model.FieldOperatingIncome]; ok && op.Valid {
		evaluated = true
		if op.Value < 0 {
			penalties = append(penalties, penalty{35, fmt.Sprintf("operating margin negative (%.1f%%)", op.Value)})
		} else if op.Value < 5 {
			penalties = append(penalties, penalty{20, fmt.Sprintf("operating margin below 5%% (%.1f%%)", op.Value)})
		}
	}
	if sga, ok := b.Vertical.OfRevenue[model.FieldSGAExpenses]; ok && sga.Valid {
		evaluated = true
		if sga.Value > 40 {
			penalties = append(penalties, penalty{10, fmt.Sprintf("SG&A above 40%% of revenue (%.1f%%)", sga.Value)})
		}
	}

	return buildScore(evaluated, penalties)
}

// scoreMarket penalizes shrinking top line and thin gross margins — the
// signals a deteriorating market position shows first.
func scoreMarket(b model.MetricBundle) model.CategoryScore {
	var penalties []penalty
	evaluated := false

	if g, ok := b.Horizontal.Growth[model.FieldRevenue]; ok && g.Valid {
		evaluated = true
		if g.Value < -10 {
			penalties = append(penalties, penalty{30, fmt.Sprintf("revenue shrinking %.1f%%", -g.Value)})
		} else if g.Value < 0 {
			penalties = append(penalties, penalty{15, fmt.Sprintf("revenue declining %.1f%%", -g.Value)})
		}
	}
	if gp, ok := b.Vertical.OfRevenue[model.FieldGrossProfit]; ok && gp.Valid {
		evaluated = true
		if gp.Value < 20 {
			penalties = append(penalties, penalty{20, fmt.Sprintf("gross margin below 20%% (%.1f%%)", gp.Value)})
		}
	}
	if m := b.Ratios.NetMarginPct; m.Valid {
		evaluated = true
		if m.Value < 2 {
			penalties = append(penalties, penalty{10, fmt.Sprintf("net margin below 2%% (%.1f%%)", m.Value)})
		}
	}

	return buildScore(evaluated, penalties)
}

// scoreCompliance is driven by the forensic manipulation indicators.
func scoreCompliance(b model.MetricBundle) model.CategoryScore {
	var penalties []penalty
	evaluated := false

	if m := b.MScore; m.Score.Valid {
		evaluated = true
		switch m.Class {
		case model.MManipulator:
			penalties = append(penalties, penalty{40, fmt.Sprintf("M-Score %.2f indicates likely manipulation", m.Score.Value)})
		case model.MAggressive:
			penalties = append(penalties, penalty{20, fmt.Sprintf("M-Score %.2f in aggressive range", m.Score.Value)})
		}
	}
	if b.Benford.Compliance.Valid {
		evaluated = true
		if b.Benford.Anomalous {
			penalties = append(penalties, penalty{25, fmt.Sprintf("Benford compliance %.1f flagged anomalous", b.Benford.Compliance.Value)})
		}
	}
	if s := b.Sloan; s.Pct.Valid {
		evaluated = true
		switch s.Risk {
		case model.AccrualHigh:
			penalties = append(penalties, penalty{20, fmt.Sprintf("Sloan ratio %.1f%% high accrual risk", s.Pct.Value)})
		case model.AccrualModerate:
			penalties = append(penalties, penalty{10, fmt.Sprintf("Sloan ratio %.1f%% moderate accrual risk", s.Pct.Value)})
		}
	}

	return buildScore(evaluated, penalties)
}

// scoreLiquidity penalizes thin short-term coverage.
func scoreLiquidity(b model.MetricBundle) model.CategoryScore {
	var penalties []penalty
	evaluated := false

	if c := b.Ratios.Current; c.Valid {
		evaluated = true
		if c.Value < 1.0 {
			penalties = append(penalties, penalty{30, fmt.Sprintf("current ratio below 1.0 (%.2f)", c.Value)})
		} else if c.Value < 1.5 {
			penalties = append(penalties, penalty{15, fmt.Sprintf("current ratio below 1.5 (%.2f)", c.Value)})
		}
	}
	if q := b.Ratios.Quick; q.Valid {
		evaluated = true
		if q.Value < 1.0 {
			penalties = append(penalties, penalty{15, fmt.Sprintf("quick ratio below 1.0 (%.2f)", q.Value)})
		}
	}
	if c := b.Ratios.Cash; c.Valid {
		evaluated = true
		if c.Value < 0.2 {
			penalties = append(penalties, penalty{10, fmt.Sprintf("cash ratio below 0.2 (%.2f)", c.Value)})
		}
	}

	return buildScore(evaluated, penalties)
}

// scoreGrowth penalizes shrinking revenue, earnings and cash generation.
func scoreGrowth(b model.MetricBundle) model.CategoryScore {
	var penalties []penalty
	evaluated := false

	if g, ok := b.Horizontal.Growth[model.FieldRevenue]; ok && g.Valid {
		evaluated = true
		if g.Value < 0 {
			penalties = append(penalties, penalty{25, fmt.Sprintf("revenue growth negative (%.1f%%)", g.Value)})
		}
	}
	if g, ok := b.Horizontal.Growth[model.FieldNetIncome]; ok && g.Valid {
		evaluated = true
		if g.Value < 0 {
			penalties = append(penalties, penalty{15, fmt.Sprintf("net income growth negative (%.1f%%)", g.Value)})
		}
	}
	if g, ok := b.Horizontal.Growth[model.FieldOperatingCashFlow]; ok && g.Valid {
		evaluated = true
		if g.Value < 0 {
			penalties = append(penalties, penalty{15, fmt.Sprintf("operating cash flow growth negative (%.1f%%)", g.Value)})
		}
	}
	if rec, ok := b.Horizontal.Growth[model.FieldAccountsReceivable]; ok && rec.Valid {
		if rev, ok := b.Horizontal.Growth[model.FieldRevenue]; ok && rev.Valid {
			evaluated = true
			if rec.Value-rev.Value > 15 {
				penalties = append(penalties, penalty{15, fmt.Sprintf("receivables growth outpaces revenue by %.1f points", rec.Value-rev.Value)})
			}
		}
	}

	return buildScore(evaluated, penalties)
}
