package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (cents). Storing integers keeps
// fare arithmetic exact; decimal.Decimal is used for intermediate math.
type Money int64

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

func MoneyFromFloat(amount float64) Money {
	return MoneyFromDecimal(decimal.NewFromFloat(amount))
}

// ParseMoney reads a decimal string like "12.50" into minor units.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return MoneyFromDecimal(d), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) IsPositive() bool {
	return m > 0
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
