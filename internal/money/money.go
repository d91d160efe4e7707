package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when constructing Money from a negative or
// non-finite numeric input.
var ErrInvalidAmount = errors.New("money: invalid amount")

// Money is an exact decimal currency amount. The zero value is 0.00.
// Amounts stay exact through arithmetic; rounding to minor units happens
// only at persistence and gateway boundaries via MinorUnits.
type Money struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{}

// FromFloat validates an untrusted numeric input and converts it to Money.
func FromFloat(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: decimal.NewFromFloat(v)}, nil
}

// FromMinorUnits builds Money from an integer count of minor currency units.
func FromMinorUnits(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// MustParse builds Money from a decimal literal. It panics on malformed
// input and is intended for configuration defaults and tests.
func MustParse(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		panic(ErrInvalidAmount)
	}
	return Money{d: d}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

// MulQty returns m multiplied by an integer quantity.
func (m Money) MulQty(qty int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// Percent applies a fractional rate (e.g. 0.13 for 13%) without rounding.
func (m Money) Percent(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate)}
}

// MinorUnits rounds half-up to the nearest integer minor unit.
func (m Money) MinorUnits() int64 {
	return m.d.Shift(2).Round(0).IntPart()
}

// ApproxEqualMinor reports whether the two amounts agree within the given
// minor-unit tolerance once both are converted at the boundary.
func (m Money) ApproxEqualMinor(other Money, toleranceMinor int64) bool {
	diff := m.MinorUnits() - other.MinorUnits()
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceMinor
}

// Equal reports exact equality.
func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// String renders the amount with two decimal places for presentation.
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON renders the amount as a JSON number with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	m.d = d
	return nil
}
