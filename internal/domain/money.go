package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmountCents converts a numeric-looking amount string into integer
// cents. The record store and request payloads may carry amounts as strings;
// this is the single coercion boundary, applied once at ingestion. Anything
// non-numeric or negative is rejected rather than defaulted to zero. Digits
// beyond two decimal places are half-up rounded.
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("ParseAmountCents: empty amount: %w", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("ParseAmountCents: %q is not a number: %w", s, ErrInvalidAmount)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("ParseAmountCents: %q is negative: %w", s, ErrNegativeAmount)
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.BigInt().BitLen() > 62 {
		return 0, fmt.Errorf("ParseAmountCents: %q out of range: %w", s, ErrInvalidAmount)
	}
	return cents.IntPart(), nil
}

// CentsToDecimalString renders cents as a plain two-decimal string, e.g.
// 123456 -> "1234.56". Used for CSV export and for writing NUMERIC columns.
func CentsToDecimalString(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

// FormatAmount renders cents for display with a caller-supplied currency
// code. The engine's arithmetic is currency-agnostic; the code is prepended,
// never inferred from data.
func FormatAmount(cents int64, currencyCode string) string {
	return currencyCode + " " + CentsToDecimalString(cents)
}
