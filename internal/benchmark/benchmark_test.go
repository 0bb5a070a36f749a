package benchmark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forensics-cli/internal/model"
)

func TestCompare_FlagsOnlyMaterialDeviations(t *testing.T) {
	ratios := model.Ratios{
		Current:      model.NewMetric(3.0), // +100% vs 1.5
		Quick:        model.NewMetric(1.1), // +10%, below the floor
		NetMarginPct: model.NewMetric(4.5), // -40% vs 7.5
	}

	signals := Compare(ratios)
	require.Len(t, signals, 2)

	assert.Equal(t, "current_ratio", signals[0].Ratio)
	assert.Equal(t, 100.0, signals[0].DeviationPct)
	assert.Equal(t, 1.5, signals[0].Baseline)

	assert.Equal(t, "net_margin_pct", signals[1].Ratio)
	assert.Equal(t, -40.0, signals[1].DeviationPct)
}

func TestCompare_SkipsUnavailableRatios(t *testing.T) {
	ratios := model.Ratios{
		Current: model.Metric{}, // unavailable
		ROEPct:  model.NewMetric(24.0),
	}

	signals := Compare(ratios)
	require.Len(t, signals, 1)
	assert.Equal(t, "roe_pct", signals[0].Ratio)
}

func TestCompare_SortsByMagnitudeDescending(t *testing.T) {
	ratios := model.Ratios{
		Current:      model.NewMetric(2.0),  // +33.33%
		DebtToEquity: model.NewMetric(3.0),  // +200%
		ROAPct:       model.NewMetric(2.5),  // -50%
		ROEPct:       model.NewMetric(12.0), // on baseline, silent
	}

	signals := Compare(ratios)
	require.Len(t, signals, 3)
	for i := 1; i < len(signals); i++ {
		assert.GreaterOrEqual(t,
			math.Abs(signals[i-1].DeviationPct),
			math.Abs(signals[i].DeviationPct))
	}
	assert.Equal(t, "debt_to_equity", signals[0].Ratio)
}

func TestCompare_EmptyRatios(t *testing.T) {
	assert.Empty(t, Compare(model.Ratios{}))
}
