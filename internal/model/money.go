package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places every stored amount has.
const MinorUnitPlaces = 2

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// Money is a two-place amount that marshals as a fixed string ("-100.00").
// Report figures use it so totals render the same way the ledger stores them.
type Money struct {
	decimal.Decimal
}

// M wraps d as Money.
func M(d decimal.Decimal) Money { return Money{Decimal: d} }

// String returns the fixed two-place representation.
func (m Money) String() string { return m.StringFixed(MinorUnitPlaces) }

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed(MinorUnitPlaces))
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: parsing %q: %w", s, err)
	}
	m.Decimal = d
	return nil
}

// HasMinorPrecision reports whether d has no more than two decimal places.
func HasMinorPrecision(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Truncate(0))
}

// FitsMinor reports whether d, in cents, fits the int64 columns amounts and
// balances are stored in.
func FitsMinor(d decimal.Decimal) bool {
	return d.Abs().Mul(hundred).Round(0).LessThanOrEqual(maxMinor)
}

// ToMinor converts d to an integer count of cents. Digits past the second
// decimal place are rounded half away from zero. Callers check FitsMinor
// first; larger values wrap.
func ToMinor(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromMinor converts an integer count of cents back to a decimal.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorUnitPlaces)
}
