// Package money provides an exact fixed-point currency value with two
// decimal places of scale. Values are backed by shopspring/decimal, never
// by a binary float, so amounts like 0.10 are represented exactly.
package money

import (
	"github.com/shopspring/decimal"

	"card-ledger/internal/errors"
)

// scale is the number of minor-unit digits every value carries.
const scale = 2

// Money is an immutable amount of currency with exactly two decimal places.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero returns the 0.00 value.
func Zero() Money {
	return Money{}
}

// FromString parses a decimal string such as "70.00" or "-30.5".
// Values with more than two decimal places fail with a precision error.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errors.NewAppError(errors.PrecisionError, "invalid money value").WithDetails(err.Error())
	}
	return fromDecimal(d)
}

// FromInt returns a whole-unit amount, e.g. FromInt(100) == 100.00.
func FromInt(n int64) Money {
	return Money{d: decimal.NewFromInt(n)}
}

// MustFromString is FromString for trusted literals; it panics on error.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	if d.Exponent() < -scale {
		// More precision than a cent cannot be represented.
		if !d.Equal(d.Truncate(scale)) {
			return Money{}, errors.NewAppErrorf(errors.PrecisionError,
				"value %s has more than %d decimal places", d.String(), scale)
		}
		d = d.Truncate(scale)
	}
	return Money{d: d}, nil
}

// Add returns m + other. It cannot lose precision for two-decimal inputs.
func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{d: m.d.Sub(other.d)}
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// Cmp returns -1, 0 or 1 as m is less than, equal to or greater than other.
func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

// Equal reports whether both amounts are exactly equal.
func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsZero reports whether m == 0.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.d.LessThan(other.d)
}

// String formats the amount with exactly two decimal places, e.g. "70.00".
func (m Money) String() string {
	return m.d.StringFixed(scale)
}

// MarshalJSON renders the amount as a JSON string to avoid float coercion.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON parses a JSON string produced by MarshalJSON.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
