package metrics

import (
	"github.com/sells-group/forensics-cli/internal/model"
)

// verticalAnalysis computes common-size percentages for the latest period:
// income-statement lines against revenue, balance-sheet lines against total
// assets. A line is skipped when its base is missing or zero, or its own
// value is missing. Percentages are rounded to two decimal places.
func verticalAnalysis(latest model.CanonicalStatement) model.VerticalAnalysis {
	va := model.VerticalAnalysis{
		OfRevenue: make(map[model.FieldKey]model.Metric),
		OfAssets:  make(map[model.FieldKey]model.Metric),
	}

	revenue := latest.Field(model.FieldRevenue)
	assets := latest.Field(model.FieldTotalAssets)

	for _, key := range model.Schema() {
		val := latest.Field(key)
		if val.Missing() {
			continue
		}
		switch model.StatementTypeOf(key) {
		case model.StatementIncome:
			if key == model.FieldRevenue {
				continue
			}
			if pct := val.Div(revenue).Scale(100).Round(2); pct.Valid {
				va.OfRevenue[key] = pct
			}
		case model.StatementBalance:
			if key == model.FieldTotalAssets {
				continue
			}
			if pct := val.Div(assets).Scale(100).Round(2); pct.Valid {
				va.OfAssets[key] = pct
			}
		}
	}

	return va
}

// horizontalAnalysis computes period-over-period growth between the two most
// recent periods. Requires at least two periods; a field is skipped when
// either operand is missing or the previous value is zero — growth from zero
// is undefined, not infinite.
func horizontalAnalysis(statements []model.CanonicalStatement) model.HorizontalAnalysis {
	if len(statements) < 2 {
		return model.HorizontalAnalysis{}
	}

	current, previous := statements[0], statements[1]
	growth := make(map[model.FieldKey]model.Metric)

	for _, key := range model.Schema() {
		cur := current.Field(key)
		prev := previous.Field(key)
		if g := cur.Sub(prev).Div(prev).Scale(100).Round(2); g.Valid {
			growth[key] = g
		}
	}

	return model.HorizontalAnalysis{Growth: growth}
}

// computeRatios derives the fixed ratio set from the latest period. Each
// ratio is gated on all operands present and a non-zero denominator.
// The quick ratio needs inventory explicitly reported: a missing inventory
// does not default to zero.
func computeRatios(latest model.CanonicalStatement) model.Ratios {
	currentAssets := latest.Field(model.FieldCurrentAssets)
	currentLiabilities := latest.Field(model.FieldCurrentLiabilities)
	netIncome := latest.Field(model.FieldNetIncome)

	return model.Ratios{
		Current: currentAssets.Div(currentLiabilities).Round(4),
		Quick: currentAssets.Sub(latest.Field(model.FieldInventory)).
			Div(currentLiabilities).Round(4),
		Cash: latest.Field(model.FieldCashAndEquivalents).
			Div(currentLiabilities).Round(4),
		NetMarginPct: netIncome.Div(latest.Field(model.FieldRevenue)).
			Scale(100).Round(2),
		ROAPct: netIncome.Div(latest.Field(model.FieldTotalAssets)).
			Scale(100).Round(2),
		ROEPct: netIncome.Div(latest.Field(model.FieldTotalEquity)).
			Scale(100).Round(2),
		DebtToEquity: latest.Field(model.FieldTotalDebt).
			Div(latest.Field(model.FieldTotalEquity)).Round(4),
		AssetTurnover: latest.Field(model.FieldRevenue).
			Div(latest.Field(model.FieldTotalAssets)).Round(4),
	}
}
