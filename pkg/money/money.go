// Package money parses loosely-typed monetary cell values into decimals.
// Amounts are always carried as shopspring decimals; raw floats never enter
// a financial calculation.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a raw cell value into a decimal amount. Strings are
// stripped of every rune that is not a digit, a decimal point or a minus
// sign before conversion, which absorbs currency symbols and thousands
// separators. A value that still fails to convert yields zero: a record with
// an unparseable amount deliberately behaves as zero-value rather than being
// excluded from the population. The second return reports whether the value
// parsed cleanly so callers can surface a data-quality warning.
func Parse(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		return parseString(v)
	default:
		return decimal.Zero, false
	}
}

func parseString(raw string) (decimal.Decimal, bool) {
	stripped := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return -1
		}
	}, raw)

	if stripped == "" {
		return decimal.Zero, false
	}

	parsed, err := decimal.NewFromString(stripped)
	if err != nil {
		return decimal.Zero, false
	}
	return parsed, true
}
