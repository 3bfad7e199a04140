package fundamentals

import (
	"encoding/json"
	"fmt"
	"strconv"

	"finance-dashboard/internal/finnhub"
)

// EarningsColumns is the fixed projection applied to every upstream earnings
// record, in display order.
var EarningsColumns = []string{"period", "quarter", "actual", "estimate", "surprise", "surprisePercent", "year"}

// EarningsRecord is one reported quarter. Numeric fields are nil when the
// upstream sent an explicit null.
type EarningsRecord struct {
	Period          string   `json:"period"`
	Quarter         *int     `json:"quarter"`
	Actual          *float64 `json:"actual"`
	Estimate        *float64 `json:"estimate"`
	Surprise        *float64 `json:"surprise"`
	SurprisePercent *float64 `json:"surprisePercent"`
	Year            *int     `json:"year"`
}

// MissingFieldError means an upstream record lacked one of EarningsColumns.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("earnings record %d: missing required field %q", e.Index, e.Field)
}

// Project reduces raw upstream records to EarningsColumns. Every column must be
// present on every record; there is no default for an absent key.
func Project(records []finnhub.RawRecord) ([]EarningsRecord, error) {
	out := make([]EarningsRecord, 0, len(records))
	for i, raw := range records {
		for _, col := range EarningsColumns {
			if _, ok := raw[col]; !ok {
				return nil, &MissingFieldError{Index: i, Field: col}
			}
		}

		var rec EarningsRecord
		var quarter, year *float64
		fields := []struct {
			name string
			dst  any
		}{
			{"period", &rec.Period},
			{"quarter", &quarter},
			{"actual", &rec.Actual},
			{"estimate", &rec.Estimate},
			{"surprise", &rec.Surprise},
			{"surprisePercent", &rec.SurprisePercent},
			{"year", &year},
		}
		for _, f := range fields {
			if err := json.Unmarshal(raw[f.name], f.dst); err != nil {
				return nil, fmt.Errorf("earnings record %d field %q: %w", i, f.name, err)
			}
		}
		rec.Quarter = toInt(quarter)
		rec.Year = toInt(year)
		out = append(out, rec)
	}
	return out, nil
}

// Cells renders the record in EarningsColumns order. Nulls become "".
func (r EarningsRecord) Cells() []string {
	return []string{
		r.Period,
		formatInt(r.Quarter),
		formatFloat(r.Actual),
		formatFloat(r.Estimate),
		formatFloat(r.Surprise),
		formatFloat(r.SurprisePercent),
		formatInt(r.Year),
	}
}

func toInt(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
