package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forensics-cli/internal/config"
	"github.com/sells-group/forensics-cli/internal/model"
)

func testEngine() *Engine {
	return NewEngine(config.AnomalyConfig{
		RevenueDeclinePct:    20,
		ProfitCashGapPct:     30,
		ReceivablesGapPct:    15,
		BenfordDeviationPct:  3,
		BenfordComplianceMin: 90,
	})
}

func TestLeadingDigit(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{1, 1}, {9, 9}, {123456, 1}, {987, 9},
		{0.042, 4}, {0.5, 5},
		{-7200, 7},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, leadingDigit(tt.in), "leadingDigit(%v)", tt.in)
	}
}

func TestBenfordExpectedPct(t *testing.T) {
	assert.InDelta(t, 30.103, benfordExpectedPct(1), 1e-3)
	assert.InDelta(t, 4.576, benfordExpectedPct(9), 1e-3)

	total := 0.0
	for d := 1; d <= 9; d++ {
		total += benfordExpectedPct(d)
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

// packStatements spreads values across schema fields, 29 per statement.
func packStatements(values []float64) []model.CanonicalStatement {
	schema := model.Schema()
	var out []model.CanonicalStatement
	for i := 0; i < len(values); i += len(schema) {
		s := model.CanonicalStatement{
			Period: time.Date(2024-len(out), 12, 31, 0, 0, 0, 0, time.UTC),
			Fields: make(map[model.FieldKey]model.Amount),
		}
		for j, key := range schema {
			if i+j >= len(values) {
				break
			}
			s.Fields[key] = model.AmountFromFloat(values[i+j])
		}
		out = append(out, s)
	}
	return out
}

func TestBenfordTest_ExactConformityScores100(t *testing.T) {
	// Per-digit counts at N=100000 match the Benford frequencies exactly.
	counts := []int{30103, 17609, 12494, 9691, 7918, 6695, 5799, 5115, 4576}
	var values []float64
	for d := 1; d <= 9; d++ {
		for i := 0; i < counts[d-1]; i++ {
			values = append(values, float64(d)*100)
		}
	}

	b := testEngine().benfordTest(packStatements(values))
	require.True(t, b.Compliance.Valid)
	assert.InDelta(t, 100.0, b.Compliance.Value, 1e-9)
	assert.Equal(t, 100000, b.Samples)
	assert.False(t, b.Anomalous)
}

func TestBenfordTest_DeviationLowersCompliance(t *testing.T) {
	// All values lead with 9: maximal deviation from Benford.
	skewed := make([]float64, 500)
	for i := range skewed {
		skewed[i] = 9000
	}

	b := testEngine().benfordTest(packStatements(skewed))
	require.True(t, b.Compliance.Valid)
	assert.True(t, b.Anomalous)
	assert.Less(t, b.Compliance.Value, 90.0)

	// A mildly skewed sample scores between the extremes.
	mild := make([]float64, 0, 1000)
	counts := []int{280, 180, 125, 97, 79, 67, 58, 60, 54}
	for d := 1; d <= 9; d++ {
		for i := 0; i < counts[d-1]; i++ {
			mild = append(mild, float64(d)*10)
		}
	}
	mb := testEngine().benfordTest(packStatements(mild))
	require.True(t, mb.Compliance.Valid)
	assert.Greater(t, mb.Compliance.Value, b.Compliance.Value)
	assert.Less(t, mb.Compliance.Value, 100.0)
}

func TestBenfordTest_NoSamplesUnavailable(t *testing.T) {
	b := testEngine().benfordTest(nil)
	assert.True(t, b.Compliance.Unavailable())
	assert.False(t, b.Anomalous, "no data is not an anomaly")
	assert.Zero(t, b.Samples)
}

func TestEngineCompute_EmptyBundle(t *testing.T) {
	bundle := testEngine().Compute(nil)
	assert.Zero(t, bundle.Periods)
	assert.True(t, bundle.Ratios.Current.Unavailable())
	assert.True(t, bundle.ZScore.Score.Unavailable())
	assert.Empty(t, bundle.Anomalies)
}
