package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forensics-cli/internal/model"
)

func TestAltmanZScore(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldTotalAssets:        1000,
		model.FieldCurrentAssets:      500,
		model.FieldCurrentLiabilities: 300,
		model.FieldRetainedEarnings:   300,
		model.FieldOperatingIncome:    100,
		model.FieldTotalEquity:        400,
		model.FieldTotalLiabilities:   600,
		model.FieldRevenue:            800,
	})

	z := altmanZScore(latest)
	require.True(t, z.Score.Valid)
	// 1.2·0.2 + 1.4·0.3 + 3.3·0.1 + 0.6·(400/600) + 1.0·0.8
	assert.InDelta(t, 2.19, z.Score.Value, 1e-4)
	assert.Equal(t, model.ZGrey, z.Class)
	assert.Len(t, z.Components, 5)
}

func TestAltmanZScore_AllOrNothing(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldTotalAssets:        1000,
		model.FieldCurrentAssets:      500,
		model.FieldCurrentLiabilities: 300,
		model.FieldRetainedEarnings:   300,
		model.FieldOperatingIncome:    100,
		model.FieldTotalEquity:        400,
		// total liabilities missing
		model.FieldRevenue: 800,
	})

	z := altmanZScore(latest)
	assert.True(t, z.Score.Unavailable(), "one missing component voids the score")
	assert.Empty(t, z.Components)
}

func TestClassifyZ_Boundaries(t *testing.T) {
	assert.Equal(t, model.ZDistress, classifyZ(1.7999))
	assert.Equal(t, model.ZGrey, classifyZ(1.8), "1.8 is grey, not distress")
	assert.Equal(t, model.ZGrey, classifyZ(2.9999))
	assert.Equal(t, model.ZSafe, classifyZ(3.0), "3.0 is safe, not grey")
}

func beneishStmt(year int) model.CanonicalStatement {
	return stmt(year, map[model.FieldKey]float64{
		model.FieldAccountsReceivable: 150,
		model.FieldRevenue:            1000,
		model.FieldGrossProfit:        400,
		model.FieldCurrentAssets:      500,
		model.FieldPPENet:             300,
		model.FieldTotalAssets:        1000,
		model.FieldSGAExpenses:        200,
		model.FieldDepreciation:       50,
		model.FieldTotalLiabilities:   600,
		model.FieldNetIncome:          100,
		model.FieldOperatingCashFlow:  100,
	})
}

func TestBeneishMScore_SteadyState(t *testing.T) {
	stmts := []model.CanonicalStatement{beneishStmt(2024), beneishStmt(2023)}

	m := beneishMScore(stmts)
	require.True(t, m.Score.Valid)
	// All indexes are 1 for identical periods and TATA is 0, so
	// M = -4.84 + (0.920+0.528+0.404+0.892+0.115-0.172-0.327) = -2.48.
	assert.InDelta(t, -2.48, m.Score.Value, 1e-4)
	assert.Equal(t, model.MConservative, m.Class)
	assert.Len(t, m.Variables, 8)
}

func TestBeneishMScore_SinglePeriodUnavailable(t *testing.T) {
	m := beneishMScore([]model.CanonicalStatement{beneishStmt(2024)})
	assert.True(t, m.Score.Unavailable())
}

func TestBeneishMScore_MissingVariableUnavailable(t *testing.T) {
	cur := beneishStmt(2024)
	delete(cur.Fields, model.FieldSGAExpenses)

	m := beneishMScore([]model.CanonicalStatement{cur, beneishStmt(2023)})
	assert.True(t, m.Score.Unavailable(), "one missing variable voids the score")
	assert.Empty(t, m.Variables)
}

func TestClassifyM_Boundaries(t *testing.T) {
	assert.Equal(t, model.MManipulator, classifyM(-1.77))
	assert.Equal(t, model.MAggressive, classifyM(-1.78))
	assert.Equal(t, model.MAggressive, classifyM(-2.22))
	assert.Equal(t, model.MConservative, classifyM(-2.23))
}

func TestSloanRatio(t *testing.T) {
	tests := []struct {
		name string
		ni   float64
		ocf  float64
		want model.AccrualRisk
		pct  float64
	}{
		{"no accruals", 100, 100, model.AccrualSafe, 0},
		{"moderate accruals", 50, -20, model.AccrualModerate, 7},
		{"high accruals", 200, 50, model.AccrualHigh, 15},
		{"high negative accruals", -80, 80, model.AccrualHigh, -16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest := stmt(2024, map[model.FieldKey]float64{
				model.FieldNetIncome:         tt.ni,
				model.FieldOperatingCashFlow: tt.ocf,
				model.FieldTotalAssets:       1000,
			})
			s := sloanRatio(latest)
			require.True(t, s.Pct.Valid)
			assert.InDelta(t, tt.pct, s.Pct.Value, 1e-9)
			assert.Equal(t, tt.want, s.Risk)
		})
	}
}

func TestSloanRatio_MissingOperand(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldNetIncome:   100,
		model.FieldTotalAssets: 1000,
	})
	s := sloanRatio(latest)
	assert.True(t, s.Pct.Unavailable())
	assert.Empty(t, s.Risk)
}
