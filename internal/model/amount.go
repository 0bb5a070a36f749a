package model

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a reported financial value that may be absent. Statement fields
// are parsed into exact decimals so currency values never pick up binary
// float rounding. A missing value is never conflated with zero: Valid is
// false when the source reported null, an empty string, or NaN.
type Amount struct {
	Dec   decimal.Decimal `json:"dec"`
	Valid bool            `json:"valid"`
}

// NewAmount returns a present Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Dec: d, Valid: true}
}

// AmountFromFloat converts a float into a present Amount. NaN and infinities
// map to the missing Amount.
func AmountFromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}
	}
	return Amount{Dec: decimal.NewFromFloat(f), Valid: true}
}

// ParseAmount parses a numeric string into an Amount. Null markers ("",
// "null", "nan", "n/a", "-") map to the missing Amount; anything else that
// fails to parse is also treated as missing rather than an error, matching
// the drop-don't-fail contract of normalization.
func ParseAmount(s string) Amount {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "nan", "n/a", "na", "-", "--":
		return Amount{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return Amount{}
	}
	return Amount{Dec: d, Valid: true}
}

// Missing reports whether the value is absent.
func (a Amount) Missing() bool { return !a.Valid }

// IsZero reports whether the value is present and exactly zero.
func (a Amount) IsZero() bool { return a.Valid && a.Dec.IsZero() }

// Float returns the value as a float64; 0 when missing. Callers must gate on
// Valid first.
func (a Amount) Float() float64 {
	if !a.Valid {
		return 0
	}
	f, _ := a.Dec.Float64()
	return f
}

// Add returns a+b, missing if either operand is missing.
func (a Amount) Add(b Amount) Amount {
	if !a.Valid || !b.Valid {
		return Amount{}
	}
	return Amount{Dec: a.Dec.Add(b.Dec), Valid: true}
}

// Sub returns a-b, missing if either operand is missing.
func (a Amount) Sub(b Amount) Amount {
	if !a.Valid || !b.Valid {
		return Amount{}
	}
	return Amount{Dec: a.Dec.Sub(b.Dec), Valid: true}
}

// Div returns a/b as a Metric, unavailable if either operand is missing or b
// is zero. Division is the single place missing data and zero denominators
// collapse into "unavailable".
func (a Amount) Div(b Amount) Metric {
	if !a.Valid || !b.Valid || b.Dec.IsZero() {
		return Metric{}
	}
	f, _ := a.Dec.Div(b.Dec).Float64()
	return Metric{Value: f, Valid: true}
}

// Metric is a derived ratio or percentage. Unlike Amount it is a plain
// float64 because derived figures are analytical, not monetary. Valid is
// false when the metric could not be computed (missing operand or zero
// denominator) — "unavailable" is distinct from "the value is 0".
type Metric struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// NewMetric returns an available Metric.
func NewMetric(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// Unavailable reports whether the metric could not be computed.
func (m Metric) Unavailable() bool { return !m.Valid }

// DivBy divides one metric by another, unavailable if either side is
// unavailable or the denominator is zero.
func (m Metric) DivBy(o Metric) Metric {
	if !m.Valid || !o.Valid || o.Value == 0 {
		return Metric{}
	}
	return Metric{Value: m.Value / o.Value, Valid: true}
}

// Scale multiplies an available metric by f (e.g. 100 for percentages).
func (m Metric) Scale(f float64) Metric {
	if !m.Valid {
		return Metric{}
	}
	return Metric{Value: m.Value * f, Valid: true}
}

// Round rounds an available metric to the given number of decimal places.
func (m Metric) Round(places int) Metric {
	if !m.Valid {
		return Metric{}
	}
	f, _ := decimal.NewFromFloat(m.Value).Round(int32(places)).Float64()
	return Metric{Value: f, Valid: true}
}
