package metrics

import (
	"math"

	"github.com/sells-group/forensics-cli/internal/model"
)

// benfordExpectedPct returns the theoretical leading-digit frequency
// P(d) = log10(1 + 1/d) as a percentage.
func benfordExpectedPct(d int) float64 {
	return math.Log10(1+1/float64(d)) * 100
}

// benfordTest runs the first-digit distribution test over every reported
// line item across all supplied statements. Compliance is 100 minus the sum
// of absolute percentage-point deviations across the nine digits, floored at
// zero, so exact conformity scores 100 and the score decreases monotonically
// with deviation. The test is flagged anomalous when any single digit
// deviates beyond the configured threshold or compliance drops below the
// configured floor.
func (e *Engine) benfordTest(statements []model.CanonicalStatement) model.Benford {
	counts := make(map[int]int, 9)
	samples := 0

	for _, s := range statements {
		for _, key := range model.Schema() {
			val := s.Field(key)
			if val.Missing() {
				continue
			}
			if d := leadingDigit(val.Float()); d > 0 {
				counts[d]++
				samples++
			}
		}
	}

	if samples == 0 {
		return model.Benford{}
	}

	digits := make([]model.BenfordDigit, 0, 9)
	totalDeviation := 0.0
	anomalous := false
	for d := 1; d <= 9; d++ {
		expected := benfordExpectedPct(d)
		actual := float64(counts[d]) / float64(samples) * 100
		deviation := math.Abs(actual - expected)
		totalDeviation += deviation
		if deviation > e.anomaly.BenfordDeviationPct {
			anomalous = true
		}
		digits = append(digits, model.BenfordDigit{
			Digit:       d,
			ExpectedPct: round2(expected),
			ActualPct:   round2(actual),
			Count:       counts[d],
		})
	}

	compliance := 100 - totalDeviation
	if compliance < 0 {
		compliance = 0
	}
	if compliance < e.anomaly.BenfordComplianceMin {
		anomalous = true
	}

	return model.Benford{
		Digits:     digits,
		Compliance: model.NewMetric(round2(compliance)),
		Samples:    samples,
		Anomalous:  anomalous,
	}
}

// leadingDigit returns the first significant digit (1-9) of v, or 0 when v is
// zero, NaN or infinite. Sign and magnitude are irrelevant: the test is scale
// invariant.
func leadingDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
