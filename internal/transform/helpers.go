package transform

import (
	"fmt"
	"math"
	"time"
)

// Number extracts a numeric field value. JSON numbers decode as float64;
// anything else reports false.
func Number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// Field reads a named numeric field from a decoded record, treating missing
// and non-numeric values as absent.
func Field(record any, name string) (float64, bool) {
	obj, ok := record.(map[string]any)
	if !ok {
		return 0, false
	}
	return Number(obj[name])
}

// StringField reads a named string field from a decoded record.
func StringField(record any, name string) string {
	obj, ok := record.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj[name].(string)
	return s
}

// Average returns the mean of the named field across records, rounded to
// two decimals. Records without the field are skipped; if no record has it
// the result is nil so the field cleans away from summaries.
func Average(records []any, field string) any {
	var sum float64
	var n int
	for _, r := range records {
		if v, ok := Field(r, field); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return math.Round(sum/float64(n)*100) / 100
}

// PeriodKey formats t as a grouping key: YYYY-MM-DD for day, YYYY-Www
// (ISO week) for week, YYYY-MM for month.
func PeriodKey(t time.Time, period string) string {
	switch period {
	case "week":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case "month":
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ParseTimestamp parses the local start timestamps intervals.icu returns,
// which come with or without a zone suffix.
func ParseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	if t, err := ParseDate(s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
