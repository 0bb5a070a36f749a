package normalizer

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forensics-cli/internal/model"
)

func TestNormalize_UnknownSource(t *testing.T) {
	_, err := Normalize([]RawStatement{{Period: "2024-12-31"}}, "bloomberg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestNormalize_MissingValueContract(t *testing.T) {
	raw := []RawStatement{{
		Period: "2024-12-31",
		Fields: map[string]any{
			"revenue":           1000.0,
			"net_income":        nil,
			"total_assets":      "",
			"inventory":         "n/a",
			"operating_income":  math.NaN(),
			"current_assets":    "0",
			"unrecognized_line": 42.0,
		},
	}}

	stmts, err := Normalize(raw, SourceGeneric)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	s := stmts[0]

	assert.True(t, s.Field(model.FieldRevenue).Valid)
	assert.True(t, s.Field(model.FieldNetIncome).Missing(), "null must not become zero")
	assert.True(t, s.Field(model.FieldTotalAssets).Missing(), "empty string must not become zero")
	assert.True(t, s.Field(model.FieldInventory).Missing())
	assert.True(t, s.Field(model.FieldOperatingIncome).Missing(), "NaN must not become zero")
	assert.True(t, s.Field(model.FieldCurrentAssets).IsZero(), "reported zero stays zero")
	assert.True(t, s.Field(model.FieldKey("unrecognized_line")).Missing(), "unknown fields are dropped")
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := []RawStatement{{
		Period: "2024-12-31",
		Fields: map[string]any{
			"revenue":    json.Number("500.25"),
			"net_income": nil,
		},
	}}

	once, err := Normalize(raw, SourceGeneric)
	require.NoError(t, err)

	// Re-feed the canonical fields: missing stays missing, values unchanged.
	again := RawStatement{Period: "2024-12-31", Fields: map[string]any{}}
	for key, amt := range once[0].Fields {
		again.Fields[string(key)] = amt
	}
	twice, err := Normalize([]RawStatement{again}, SourceGeneric)
	require.NoError(t, err)

	assert.Equal(t, once[0].Fields, twice[0].Fields)
}

func TestNormalize_SortsMostRecentFirst(t *testing.T) {
	raw := []RawStatement{
		{Period: "2022-12-31", Fields: map[string]any{"revenue": 1.0}},
		{Period: "2024-12-31", Fields: map[string]any{"revenue": 3.0}},
		{Period: "2023-12-31", Fields: map[string]any{"revenue": 2.0}},
	}

	stmts, err := Normalize(raw, SourceGeneric)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, 2024, stmts[0].Period.Year())
	assert.Equal(t, 2023, stmts[1].Period.Year())
	assert.Equal(t, 2022, stmts[2].Period.Year())
}

func TestNormalize_SkipsUnparseablePeriods(t *testing.T) {
	raw := []RawStatement{
		{Period: "Q4 FY24", Fields: map[string]any{"revenue": 1.0}},
		{Period: "2024-12-31", Fields: map[string]any{"revenue": 2.0}},
	}

	stmts, err := Normalize(raw, SourceGeneric)
	require.NoError(t, err)
	assert.Len(t, stmts, 1)
}

func TestNormalize_EDGARFieldMapping(t *testing.T) {
	raw := []RawStatement{{
		Period: "2024-12-31",
		Fields: map[string]any{
			"Revenues":      json.Number("9000"),
			"NetIncomeLoss": json.Number("750"),
			"AssetsCurrent": json.Number("4000"),
			"NetCashProvidedByUsedInOperatingActivities": json.Number("820"),
		},
	}}

	stmts, err := Normalize(raw, SourceEDGAR)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	s := stmts[0]

	assert.Equal(t, "9000", s.Field(model.FieldRevenue).Dec.String())
	assert.Equal(t, "750", s.Field(model.FieldNetIncome).Dec.String())
	assert.Equal(t, "4000", s.Field(model.FieldCurrentAssets).Dec.String())
	assert.Equal(t, "820", s.Field(model.FieldOperatingCashFlow).Dec.String())
}

func TestNormalize_DerivesTotalDebt(t *testing.T) {
	raw := []RawStatement{{
		Period: "2024-12-31",
		Fields: map[string]any{
			"DebtCurrent":            json.Number("300"),
			"LongTermDebtNoncurrent": json.Number("1200"),
		},
	}}

	stmts, err := Normalize(raw, SourceEDGAR)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "1500", stmts[0].Field(model.FieldTotalDebt).Dec.String())

	// A lone component is not a total.
	raw[0].Fields = map[string]any{"DebtCurrent": json.Number("300")}
	stmts, err = Normalize(raw, SourceEDGAR)
	require.NoError(t, err)
	assert.True(t, stmts[0].Field(model.FieldTotalDebt).Missing())

	// A reported total wins over derivation.
	raw = []RawStatement{{
		Period: "2024-12-31",
		Fields: map[string]any{
			"total_debt":     json.Number("999"),
			"current_debt":   json.Number("300"),
			"long_term_debt": json.Number("1200"),
		},
	}}
	stmts, err = Normalize(raw, SourceGeneric)
	require.NoError(t, err)
	assert.Equal(t, "999", stmts[0].Field(model.FieldTotalDebt).Dec.String())
}

func TestParsePeriod_Layouts(t *testing.T) {
	for _, in := range []string{"2024-12-31", "2024-12-31T00:00:00Z", "2024-12", "2024"} {
		got, err := parsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2024, got.Year(), in)
	}
}
