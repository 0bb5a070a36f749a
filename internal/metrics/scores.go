package metrics

import (
	"github.com/sells-group/forensics-cli/internal/model"
)

// altmanZScore computes the original manufacturing-weight Altman Z:
//
//	Z = 1.2·(WC/TA) + 1.4·(RE/TA) + 3.3·(EBIT/TA) + 0.6·(EQ/TL) + 1.0·(REV/TA)
//
// Operating income stands in for EBIT. The score is all-or-nothing: if any of
// the five component ratios cannot be computed, the whole score is
// unavailable rather than a partial sum.
func altmanZScore(latest model.CanonicalStatement) model.ZScore {
	assets := latest.Field(model.FieldTotalAssets)

	components := []struct {
		name   string
		weight float64
		ratio  model.Metric
	}{
		{"working_capital_to_assets", 1.2, latest.WorkingCapital().Div(assets)},
		{"retained_earnings_to_assets", 1.4, latest.Field(model.FieldRetainedEarnings).Div(assets)},
		{"ebit_to_assets", 3.3, latest.Field(model.FieldOperatingIncome).Div(assets)},
		{"equity_to_liabilities", 0.6, latest.Field(model.FieldTotalEquity).Div(latest.Field(model.FieldTotalLiabilities))},
		{"revenue_to_assets", 1.0, latest.Field(model.FieldRevenue).Div(assets)},
	}

	parts := make(map[string]float64, len(components))
	z := 0.0
	for _, c := range components {
		if c.ratio.Unavailable() {
			return model.ZScore{}
		}
		weighted := c.weight * c.ratio.Value
		parts[c.name] = weighted
		z += weighted
	}

	return model.ZScore{
		Score:      model.NewMetric(z).Round(4),
		Components: parts,
		Class:      classifyZ(z),
	}
}

// classifyZ applies the standard zones: below 1.8 distress, 1.8 up to but not
// including 3.0 grey, 3.0 and above safe.
func classifyZ(z float64) model.ZClass {
	switch {
	case z < 1.8:
		return model.ZDistress
	case z < 3.0:
		return model.ZGrey
	default:
		return model.ZSafe
	}
}

// beneishMScore computes the 8-variable Beneish model over the two most
// recent periods using the 1999 coefficients:
//
//	M = -4.84 + 0.920·DSRI + 0.528·GMI + 0.404·AQI + 0.892·SGI
//	    + 0.115·DEPI - 0.172·SGAI + 4.679·TATA - 0.327·LVGI
//
// Each variable must be independently computable (no missing operands, no
// zero denominators) or the score is unavailable.
func beneishMScore(statements []model.CanonicalStatement) model.MScore {
	if len(statements) < 2 {
		return model.MScore{}
	}
	cur, prior := statements[0], statements[1]

	// DSRI: receivables collection period index.
	dsri := ratioIndex(
		cur.Field(model.FieldAccountsReceivable), cur.Field(model.FieldRevenue),
		prior.Field(model.FieldAccountsReceivable), prior.Field(model.FieldRevenue),
	)

	// GMI: prior gross margin over current — deterioration pushes it above 1.
	gmi := ratioIndex(
		prior.Field(model.FieldGrossProfit), prior.Field(model.FieldRevenue),
		cur.Field(model.FieldGrossProfit), cur.Field(model.FieldRevenue),
	)

	// AQI: share of soft assets (everything outside current assets and PP&E).
	aqi := softAssetRatio(cur).DivBy(softAssetRatio(prior))

	// SGI: sales growth index.
	sgi := cur.Field(model.FieldRevenue).Div(prior.Field(model.FieldRevenue))

	// DEPI: prior depreciation rate over current — a slowdown inflates income.
	depi := depreciationRate(prior).DivBy(depreciationRate(cur))

	// SGAI: SG&A share of sales index.
	sgai := ratioIndex(
		cur.Field(model.FieldSGAExpenses), cur.Field(model.FieldRevenue),
		prior.Field(model.FieldSGAExpenses), prior.Field(model.FieldRevenue),
	)

	// LVGI: leverage index.
	lvgi := ratioIndex(
		cur.Field(model.FieldTotalLiabilities), cur.Field(model.FieldTotalAssets),
		prior.Field(model.FieldTotalLiabilities), prior.Field(model.FieldTotalAssets),
	)

	// TATA: total accruals scaled by assets, current period only.
	tata := cur.Field(model.FieldNetIncome).
		Sub(cur.Field(model.FieldOperatingCashFlow)).
		Div(cur.Field(model.FieldTotalAssets))

	vars := map[string]model.Metric{
		"dsri": dsri, "gmi": gmi, "aqi": aqi, "sgi": sgi,
		"depi": depi, "sgai": sgai, "lvgi": lvgi, "tata": tata,
	}
	values := make(map[string]float64, len(vars))
	for name, v := range vars {
		if v.Unavailable() {
			return model.MScore{}
		}
		values[name] = v.Value
	}

	m := -4.84 +
		0.920*values["dsri"] +
		0.528*values["gmi"] +
		0.404*values["aqi"] +
		0.892*values["sgi"] +
		0.115*values["depi"] -
		0.172*values["sgai"] +
		4.679*values["tata"] -
		0.327*values["lvgi"]

	return model.MScore{
		Score:     model.NewMetric(m).Round(4),
		Variables: values,
		Class:     classifyM(m),
	}
}

// classifyM applies the published bands: above -1.78 likely manipulator,
// below -2.22 conservative, in between grey/aggressive.
func classifyM(m float64) model.MClass {
	switch {
	case m > -1.78:
		return model.MManipulator
	case m < -2.22:
		return model.MConservative
	default:
		return model.MAggressive
	}
}

// sloanRatio computes (net income − operating cash flow) / total assets × 100
// and bands its magnitude: above 10 high accrual risk, 5-10 moderate, under 5
// safe.
func sloanRatio(latest model.CanonicalStatement) model.SloanRatio {
	pct := latest.Field(model.FieldNetIncome).
		Sub(latest.Field(model.FieldOperatingCashFlow)).
		Div(latest.Field(model.FieldTotalAssets)).
		Scale(100).Round(2)
	if pct.Unavailable() {
		return model.SloanRatio{}
	}

	abs := pct.Value
	if abs < 0 {
		abs = -abs
	}
	risk := model.AccrualSafe
	switch {
	case abs > 10:
		risk = model.AccrualHigh
	case abs >= 5:
		risk = model.AccrualModerate
	}

	return model.SloanRatio{Pct: pct, Risk: risk}
}

// ratioIndex computes (a1/b1) / (a2/b2), unavailable if any operand is
// missing or any denominator (including the inner ratio) is zero.
func ratioIndex(a1, b1, a2, b2 model.Amount) model.Metric {
	return a1.Div(b1).DivBy(a2.Div(b2))
}

// softAssetRatio is 1 − (current assets + PP&E) / total assets.
func softAssetRatio(s model.CanonicalStatement) model.Metric {
	hard := s.Field(model.FieldCurrentAssets).Add(s.Field(model.FieldPPENet))
	r := hard.Div(s.Field(model.FieldTotalAssets))
	if r.Unavailable() {
		return model.Metric{}
	}
	return model.NewMetric(1 - r.Value)
}

// depreciationRate is depreciation / (net PP&E + depreciation).
func depreciationRate(s model.CanonicalStatement) model.Metric {
	dep := s.Field(model.FieldDepreciation)
	return dep.Div(s.Field(model.FieldPPENet).Add(dep))
}
