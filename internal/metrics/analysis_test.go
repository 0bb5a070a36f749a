package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/forensics-cli/internal/model"
)

func stmt(year int, fields map[model.FieldKey]float64) model.CanonicalStatement {
	s := model.CanonicalStatement{
		Period: time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
		Fields: make(map[model.FieldKey]model.Amount, len(fields)),
	}
	for k, v := range fields {
		s.Fields[k] = model.AmountFromFloat(v)
	}
	return s
}

func TestComputeRatios_Basic(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldCurrentAssets:      2000,
		model.FieldCurrentLiabilities: 1000,
		model.FieldInventory:          500,
		model.FieldCashAndEquivalents: 400,
		model.FieldNetIncome:          100,
		model.FieldRevenue:            1000,
		model.FieldTotalAssets:        5000,
		model.FieldTotalEquity:        2500,
		model.FieldTotalDebt:          1250,
	})

	r := computeRatios(latest)

	assert.InDelta(t, 2.0, r.Current.Value, 1e-9)
	assert.InDelta(t, 1.5, r.Quick.Value, 1e-9)
	assert.InDelta(t, 0.4, r.Cash.Value, 1e-9)
	assert.InDelta(t, 10.0, r.NetMarginPct.Value, 1e-9)
	assert.InDelta(t, 2.0, r.ROAPct.Value, 1e-9)
	assert.InDelta(t, 4.0, r.ROEPct.Value, 1e-9)
	assert.InDelta(t, 0.5, r.DebtToEquity.Value, 1e-9)
	assert.InDelta(t, 0.2, r.AssetTurnover.Value, 1e-9)
}

func TestComputeRatios_MissingOperandUnavailable(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldCurrentAssets:      2000,
		model.FieldCurrentLiabilities: 1000,
		// no inventory, no net income, no revenue
	})

	r := computeRatios(latest)

	assert.True(t, r.Current.Valid)
	assert.True(t, r.Quick.Unavailable(), "missing inventory must not default to zero")
	assert.True(t, r.NetMarginPct.Unavailable())
	assert.True(t, r.ROAPct.Unavailable())
	assert.True(t, r.AssetTurnover.Unavailable())
}

func TestComputeRatios_ZeroDenominatorUnavailable(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldCurrentAssets:      2000,
		model.FieldCurrentLiabilities: 0,
		model.FieldNetIncome:          100,
		model.FieldTotalEquity:        0,
	})

	r := computeRatios(latest)

	assert.True(t, r.Current.Unavailable(), "zero current liabilities")
	assert.True(t, r.ROEPct.Unavailable(), "zero equity")
}

func TestVerticalAnalysis(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldRevenue:       1000,
		model.FieldCostOfRevenue: 600,
		model.FieldNetIncome:     100,
		model.FieldTotalAssets:   5000,
		model.FieldInventory:     500,
	})

	va := verticalAnalysis(latest)

	assert.InDelta(t, 60.0, va.OfRevenue[model.FieldCostOfRevenue].Value, 1e-9)
	assert.InDelta(t, 10.0, va.OfRevenue[model.FieldNetIncome].Value, 1e-9)
	assert.InDelta(t, 10.0, va.OfAssets[model.FieldInventory].Value, 1e-9)

	_, hasRevenue := va.OfRevenue[model.FieldRevenue]
	assert.False(t, hasRevenue, "the base line is excluded")
	_, hasAssets := va.OfAssets[model.FieldTotalAssets]
	assert.False(t, hasAssets, "the base line is excluded")
}

func TestVerticalAnalysis_MissingBaseSkipsSection(t *testing.T) {
	latest := stmt(2024, map[model.FieldKey]float64{
		model.FieldCostOfRevenue: 600,
		model.FieldInventory:     500,
		model.FieldTotalAssets:   5000,
	})

	va := verticalAnalysis(latest)

	assert.Empty(t, va.OfRevenue, "no revenue, no common-size income lines")
	assert.NotEmpty(t, va.OfAssets)
}

func TestHorizontalAnalysis(t *testing.T) {
	stmts := []model.CanonicalStatement{
		stmt(2024, map[model.FieldKey]float64{
			model.FieldRevenue:   1200,
			model.FieldNetIncome: 90,
		}),
		stmt(2023, map[model.FieldKey]float64{
			model.FieldRevenue:   1000,
			model.FieldNetIncome: 100,
		}),
	}

	ha := horizontalAnalysis(stmts)

	assert.InDelta(t, 20.0, ha.Growth[model.FieldRevenue].Value, 1e-9)
	assert.InDelta(t, -10.0, ha.Growth[model.FieldNetIncome].Value, 1e-9)
}

func TestHorizontalAnalysis_SinglePeriodEmpty(t *testing.T) {
	ha := horizontalAnalysis([]model.CanonicalStatement{
		stmt(2024, map[model.FieldKey]float64{model.FieldRevenue: 1000}),
	})
	assert.Empty(t, ha.Growth)
}

func TestHorizontalAnalysis_ZeroBaseSkipped(t *testing.T) {
	stmts := []model.CanonicalStatement{
		stmt(2024, map[model.FieldKey]float64{model.FieldRevenue: 1200}),
		stmt(2023, map[model.FieldKey]float64{model.FieldRevenue: 0}),
	}

	ha := horizontalAnalysis(stmts)
	_, ok := ha.Growth[model.FieldRevenue]
	assert.False(t, ok, "growth from zero is undefined")
}
