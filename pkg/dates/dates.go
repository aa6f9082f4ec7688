// Package dates holds the calendar arithmetic the audit engine relies on.
// Every date is normalized to UTC midnight so day counts never drift across
// daylight-saving boundaries.
package dates

import (
	"math"
	"strings"
	"time"
)

// serialEpoch is the day-zero used by common spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// layouts accepted by the tolerant parser, tried in order after the ISO
// fast path.
var layouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// Midnight truncates t to UTC midnight.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns ceil((b-a)/1 day), positive when b is after a. Inputs
// are normalized to UTC midnight first, so for date-only values the result
// is an exact day count.
func DaysBetween(a, b time.Time) int {
	diff := Midnight(b).Sub(Midnight(a))
	return int(math.Ceil(diff.Hours() / 24))
}

// AddDays returns the UTC midnight that lies n calendar days from t.
func AddDays(t time.Time, n int) time.Time {
	return Midnight(t).AddDate(0, 0, n)
}

// FromSerial converts a spreadsheet day-serial (days since 1899-12-30, the
// serialization used by common spreadsheet tools) into a UTC midnight date.
// Fractional serials carry a time-of-day component and are rounded to the
// nearest whole day.
func FromSerial(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(math.Round(serial)))
}

// Parse converts loosely-typed cell values into a date. It accepts ISO
// strings, numeric day-serials and a small set of common layouts. The second
// return is false when the value cannot be interpreted; callers apply their
// own documented fallback instead of propagating a corrupt date.
func Parse(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return Midnight(v), true
	case float64:
		return FromSerial(v), true
	case float32:
		return FromSerial(float64(v)), true
	case int:
		return FromSerial(float64(v)), true
	case int64:
		return FromSerial(float64(v)), true
	case string:
		return parseString(v)
	default:
		return time.Time{}, false
	}
}

func parseString(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return Midnight(parsed), true
		}
	}
	return time.Time{}, false
}
