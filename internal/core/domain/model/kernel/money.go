package kernel

import (
	"fmt"

	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrMoneyIsNotConstructed is returned for a zero-value Money.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney or MoneyFromString")

// Money is a non-negative amount with cent precision. The currency is implied by
// the marketplace and is not modelled.
type Money struct { //nolint:recvcheck //using for validation
	amount decimal.Decimal
	guard  guard.ConstructorGuard
}

func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"amount", fmt.Errorf("%s is negative", amount.StringFixed(2)))
	}
	return Money{
		amount: amount.Round(2),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func MoneyFromString(s string) (Money, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(amount)
}

// MustMoney is intended for constants and tests.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

func (m Money) Add(other Money) Money {
	return Money{
		amount: m.amount.Add(other.amount),
		guard:  guard.NewConstructorGuard(),
	}
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String renders the amount with exactly two fraction digits, e.g. "12.00".
func (m Money) String() string {
	return m.amount.StringFixed(2)
}
