package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal converts a string to a decimal.Decimal value.
// It accepts user-formatted strings such as "1,250.50" or "USD 12".
func ParseDecimal(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "USD", "")
	s = strings.ReplaceAll(s, "usd", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	// Strip everything except digits and '.'.
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", value)
	}
	if neg {
		clean = "-" + clean
	}
	return decimal.NewFromString(clean)
}

// DecimalFromAny accepts the shapes a JSON body can carry a decimal in.
// Strings must be plain numbers; use ParseDecimal for user-formatted input.
func DecimalFromAny(i interface{}) (decimal.Decimal, error) {
	switch v := i.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("invalid decimal value")
	}
}

// ValidateDecimal checks value fits a decimal(maxDigits, decimalPlaces) column.
func ValidateDecimal(field string, value decimal.Decimal, maxDigits int32, decimalPlaces int32) error {
	if !value.Equal(value.Round(decimalPlaces)) {
		return NewValidationError(field, fmt.Sprintf("ensure that there are no more than %d decimal places", decimalPlaces))
	}
	limit := decimal.New(1, maxDigits-decimalPlaces)
	if value.Abs().GreaterThanOrEqual(limit) {
		return NewValidationError(field, fmt.Sprintf("ensure that there are no more than %d digits before the decimal point", maxDigits-decimalPlaces))
	}
	return nil
}
