// Package normalizer converts heterogeneous source statement payloads into
// the canonical 29-field schema. It owns the missing-value contract every
// downstream computation relies on: null, empty string and NaN map to an
// explicit missing marker, never to zero.
package normalizer

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/forensics-cli/internal/model"
)

// ErrUnknownSource is returned when no field table exists for a source.
var ErrUnknownSource = eris.New("normalizer: unknown source")

// RawStatement is one reporting period as delivered by a data source:
// source-specific field names, values of whatever type the transport gave us.
type RawStatement struct {
	Period string         `json:"period"`
	Fields map[string]any `json:"fields"`
}

// Normalize maps raw statements onto the canonical schema using the source's
// field table. Unknown source fields are dropped. Output is sorted most
// recent period first; an empty payload yields an empty slice, not an error.
func Normalize(raw []RawStatement, source string) ([]model.CanonicalStatement, error) {
	table, ok := fieldTables[source]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSource, "normalizer: source %q", source)
	}

	out := make([]model.CanonicalStatement, 0, len(raw))
	for _, rs := range raw {
		period, err := parsePeriod(rs.Period)
		if err != nil {
			zap.L().Warn("normalizer: skipping period with unparseable date",
				zap.String("source", source),
				zap.String("period", rs.Period),
			)
			continue
		}

		fields := make(map[model.FieldKey]model.Amount)
		for name, val := range rs.Fields {
			key, mapped := table[name]
			if !mapped {
				continue
			}
			amt := coerce(val)
			if amt.Valid {
				fields[key] = amt
			}
		}
		deriveTotalDebt(fields)
		out = append(out, model.CanonicalStatement{Period: period, Fields: fields})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Period.After(out[j].Period)
	})

	return out, nil
}

// deriveTotalDebt fills in total_debt from its components when the source
// reports them separately. Derivation only happens when both components are
// present; a lone current or long-term figure stays as-is.
func deriveTotalDebt(fields map[model.FieldKey]model.Amount) {
	if _, ok := fields[model.FieldTotalDebt]; ok {
		return
	}
	sum := fields[model.FieldCurrentDebt].Add(fields[model.FieldLongTermDebt])
	if sum.Valid {
		fields[model.FieldTotalDebt] = sum
	}
}

// coerce converts a raw field value into an Amount. NaN, null, empty strings
// and unrecognized types all map to the missing Amount.
func coerce(v any) model.Amount {
	switch t := v.(type) {
	case nil:
		return model.Amount{}
	case string:
		return model.ParseAmount(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return model.Amount{}
		}
		return model.AmountFromFloat(t)
	case float32:
		return coerce(float64(t))
	case int:
		return model.AmountFromFloat(float64(t))
	case int64:
		return model.AmountFromFloat(float64(t))
	case json.Number:
		return model.ParseAmount(t.String())
	case model.Amount:
		// Re-normalizing canonical data is a no-op: missing stays missing.
		return t
	default:
		return model.Amount{}
	}
}

func parsePeriod(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("normalizer: parse period %q", s)
}
