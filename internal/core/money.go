// Package core provides the sales domain: records, money amounts, group keys,
// aggregates and the error taxonomy shared by the reader, the aggregation
// engines and the CLI.
//
// This file contains amount parsing and formatting. Amounts are held as
// integer cents so totals add up exactly regardless of input size.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a decimal string to Money with half-up rounding to cents.
//
// Both dot (12.34) and a single comma (12,34) are accepted as decimal separator.
// Zero is a valid amount; negative values and exponent notation are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents (half-up)
//	ParseAmount("-1")     -> ErrNegativeAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Exponents make the rescale below cost 10^exp, so only plain
	// positional notation is accepted.
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	// Round rounds half away from zero, which is half-up for non-negative values.
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "19.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
