// Package money converts between human-entered VND amounts and the int64
// minor units used everywhere inside the application. VND has no fractional
// subunit, so an amount is always a whole number of đồng.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("money: invalid amount")

// Parse converts a user-entered amount string into whole đồng. Grouping
// separators ("1.500.000", "1,500,000"), spaces and a trailing currency
// marker are tolerated. Negative and fractional amounts are rejected; the
// sign of a transaction is derived from its type, never from the amount.
func Parse(s string) (int64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimSuffix(cleaned, "₫")
	cleaned = strings.TrimSuffix(cleaned, "đ")
	replacer := strings.NewReplacer(".", "", ",", "", " ", "")
	cleaned = replacer.Replace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: VND has no fractional unit, got %q", ErrInvalidAmount, s)
	}
	return d.IntPart(), nil
}

// Format renders an amount in đồng with dot thousand separators, the common
// Vietnamese style: 1500000 -> "1.500.000".
func Format(amount int64) string {
	d := decimal.NewFromInt(amount)
	digits := d.Abs().String()

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}
