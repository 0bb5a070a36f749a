package model

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		valid bool
		want  string
	}{
		{"plain integer", "1000", true, "1000"},
		{"negative", "-42.5", true, "-42.5"},
		{"thousands separators", "1,234,567.89", true, "1234567.89"},
		{"whitespace", "  250  ", true, "250"},
		{"empty", "", false, ""},
		{"null marker", "null", false, ""},
		{"nan marker", "NaN", false, ""},
		{"not applicable", "n/a", false, ""},
		{"dash", "-", false, ""},
		{"garbage", "12abc", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Dec.String())
			}
		})
	}
}

func TestAmountFromFloat_NonFinite(t *testing.T) {
	assert.True(t, AmountFromFloat(math.NaN()).Missing())
	assert.True(t, AmountFromFloat(math.Inf(1)).Missing())
	assert.True(t, AmountFromFloat(math.Inf(-1)).Missing())
	assert.True(t, AmountFromFloat(3.14).Valid)
}

func TestAmount_MissingIsNotZero(t *testing.T) {
	missing := Amount{}
	zero := NewAmount(decimal.Zero)

	assert.True(t, missing.Missing())
	assert.False(t, missing.IsZero())
	assert.True(t, zero.IsZero())
	assert.False(t, zero.Missing())
}

func TestAmount_Div(t *testing.T) {
	ten := AmountFromFloat(10)
	four := AmountFromFloat(4)
	zero := AmountFromFloat(0)
	missing := Amount{}

	got := ten.Div(four)
	assert.True(t, got.Valid)
	assert.InDelta(t, 2.5, got.Value, 1e-9)

	assert.True(t, ten.Div(zero).Unavailable(), "zero denominator")
	assert.True(t, ten.Div(missing).Unavailable(), "missing denominator")
	assert.True(t, missing.Div(four).Unavailable(), "missing numerator")
}

func TestAmount_AddSubPropagateMissing(t *testing.T) {
	a := AmountFromFloat(7)
	missing := Amount{}

	assert.True(t, a.Add(missing).Missing())
	assert.True(t, missing.Sub(a).Missing())

	sum := a.Add(AmountFromFloat(3))
	assert.True(t, sum.Valid)
	assert.Equal(t, "10", sum.Dec.String())
}

func TestMetric_DivByScaleRound(t *testing.T) {
	m := NewMetric(1).DivBy(NewMetric(3)).Scale(100).Round(2)
	assert.True(t, m.Valid)
	assert.InDelta(t, 33.33, m.Value, 1e-9)

	assert.True(t, NewMetric(1).DivBy(NewMetric(0)).Unavailable())
	assert.True(t, NewMetric(1).DivBy(Metric{}).Unavailable())
	assert.True(t, Metric{}.Scale(100).Unavailable())
	assert.True(t, Metric{}.Round(2).Unavailable())
}
