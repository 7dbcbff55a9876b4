// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents so that SQL aggregation stays exact;
// shopspring/decimal is used at the edges for parsing and formatting.
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is a signed amount in minor units (cents).
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// currencySymbols are stripped by ParseAmount.
const currencySymbols = "$€£¥₹"

// NewMoneyFromDecimal rounds d half away from zero to two places. Amounts
// whose cents do not fit in an int64 fail with ErrInvalidAmount.
func NewMoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return Money{Cents: cents.IntPart()}, nil
}

// MustMoney parses a plain decimal string; it panics on bad input and is meant for literals.
func MustMoney(s string) Money {
	m, err := NewMoneyFromDecimal(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "-12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// Validate accepts strictly positive amounts only.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimals.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	parsed, err := NewMoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseAmount converts loosely formatted amounts into a decimal.
//
// Currency symbols, thousands separators and whitespace are dropped, and a value
// wrapped in parentheses is negated (accounting notation). The sign is preserved;
// callers that require positive amounts must check it themselves.
//
// Examples:
//
//	ParseAmount("$1,234.56") -> 1234.56
//	ParseAmount("(50.00)")   -> -50.00
//	ParseAmount("abc")       -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || strings.ContainsRune(currencySymbols, r) {
			return -1
		}
		return r
	}, s)

	negate := false
	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = cleaned[1 : len(cleaned)-1]
		negate = true
	}
	if cleaned == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if negate {
		d = d.Neg()
	}
	return d, nil
}
