// Package benchmark compares a company's computed ratios against sector
// baselines and reports material deviations.
package benchmark

import (
	"math"
	"sort"

	"github.com/sells-group/forensics-cli/internal/model"
)

// baseline holds reference ratio levels for a broad cross-industry cohort.
// Values are medians from aggregate public-company statistics; the point of
// the stage is direction and magnitude of deviation, not sector precision.
var baseline = map[string]float64{
	"current_ratio":  1.5,
	"quick_ratio":    1.0,
	"net_margin_pct": 7.5,
	"roa_pct":        5.0,
	"roe_pct":        12.0,
	"debt_to_equity": 1.0,
	"asset_turnover": 0.8,
}

// deviationFloorPct is the smallest relative deviation worth flagging.
const deviationFloorPct = 20.0

// Compare reports each available company ratio whose relative deviation from
// its baseline exceeds the floor, ordered by deviation magnitude descending.
func Compare(ratios model.Ratios) []model.BenchmarkSignal {
	candidates := []struct {
		name string
		m    model.Metric
	}{
		{"current_ratio", ratios.Current},
		{"quick_ratio", ratios.Quick},
		{"net_margin_pct", ratios.NetMarginPct},
		{"roa_pct", ratios.ROAPct},
		{"roe_pct", ratios.ROEPct},
		{"debt_to_equity", ratios.DebtToEquity},
		{"asset_turnover", ratios.AssetTurnover},
	}

	var out []model.BenchmarkSignal
	for _, c := range candidates {
		base, ok := baseline[c.name]
		if !ok || !c.m.Valid || base == 0 {
			continue
		}
		dev := (c.m.Value - base) / math.Abs(base) * 100
		if math.Abs(dev) < deviationFloorPct {
			continue
		}
		out = append(out, model.BenchmarkSignal{
			Ratio:        c.name,
			Company:      round2(c.m.Value),
			Baseline:     base,
			DeviationPct: round2(dev),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i].DeviationPct) > math.Abs(out[j].DeviationPct)
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
