package decimal

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Round rounds the money amount to cents
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Annual converts a monthly amount to annual
func (m Money) Annual() Money {
	return Money{m.Decimal.Mul(decimal.NewFromInt(12))}
}

// Grow compounds the amount by rate for the given number of years
func (m Money) Grow(rate decimal.Decimal, years int) Money {
	if years <= 0 {
		return m
	}
	return Money{m.Decimal.Mul(decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years))))}
}

// Discount is the present value of the amount received the given number of years from now
func (m Money) Discount(rate decimal.Decimal, years int) Money {
	if years <= 0 {
		return m
	}
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
	return Money{SafeDiv(m.Decimal, factor)}
}

// String returns the amount with two decimal places
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format formats the money amount with a dollar sign
func (m Money) Format() string {
	if m.Decimal.IsNegative() {
		return "-$" + m.Decimal.Abs().StringFixed(2)
	}
	return "$" + m.String()
}

// SafeDiv divides a by b and returns zero when b is zero
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// Midpoint returns the dollar-rounded midpoint of lo and hi
func Midpoint(lo, hi decimal.Decimal) decimal.Decimal {
	return lo.Add(hi).Div(decimal.NewFromInt(2)).Floor()
}
