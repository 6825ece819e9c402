package number

import (
	"math/big"

	"creditagency/core"

	"github.com/shopspring/decimal"
)

// MaxAmount largest representable amount, 2^128-1
var MaxAmount = decimal.NewFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
	0,
)

// Decimal parse decimal, zero on error
func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Ceil round up at precision
func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// ValidAmount amount is a non-negative integer not above MaxAmount
func ValidAmount(d decimal.Decimal) error {
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return core.ErrInvalidAmount
	}

	if d.GreaterThan(MaxAmount) {
		return core.ErrOverflow
	}

	return nil
}

// CheckedAdd a + b, overflow when the sum exceeds MaxAmount
func CheckedAdd(a, b decimal.Decimal) (decimal.Decimal, error) {
	sum := a.Add(b)
	if sum.GreaterThan(MaxAmount) {
		return decimal.Zero, core.ErrOverflow
	}

	return sum, nil
}

// CheckedSub a - b, underflow when b > a
func CheckedSub(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.GreaterThan(a) {
		return decimal.Zero, core.ErrUnderflow
	}

	return a.Sub(b), nil
}

// MulFloor amount * rate rounded down to an integer amount
func MulFloor(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	v := amount.Mul(rate).Floor()
	if v.GreaterThan(MaxAmount) {
		return decimal.Zero, core.ErrOverflow
	}

	return v, nil
}

// DivFloor amount / rate rounded down, rate must be positive
func DivFloor(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, core.ErrInvalidArgument
	}

	v := amount.DivRound(rate, 18).Floor()
	if v.GreaterThan(MaxAmount) {
		return decimal.Zero, core.ErrOverflow
	}

	return v, nil
}

// DivCeil amount / rate rounded up, rate must be positive
func DivCeil(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, core.ErrInvalidArgument
	}

	v := amount.DivRound(rate, 18).Ceil()
	if v.GreaterThan(MaxAmount) {
		return decimal.Zero, core.ErrOverflow
	}

	return v, nil
}

// IsRatio 0 < d <= 1
func IsRatio(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(decimal.NewFromInt(1))
}
