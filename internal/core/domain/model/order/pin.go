package order

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"
)

// PinLength is the number of decimal digits of a pickup PIN.
const PinLength = 6

var ErrPinIsNotConstructed = errors.New("Pin must be created via NewPin")

// Pin is the one-time code that opens the order's compartment.
type Pin struct { //nolint:recvcheck //using for validation
	digits string
	guard  guard.ConstructorGuard
}

// NewPin accepts exactly six ASCII digits; anything else is a validation error.
func NewPin(digits string) (Pin, error) {
	if len(digits) != PinLength {
		return Pin{}, errs.NewValueIsInvalidErrorWithCause(
			"pin", fmt.Errorf("must be exactly %d digits", PinLength))
	}
	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return Pin{}, errs.NewValueIsInvalidErrorWithCause(
				"pin", fmt.Errorf("must be exactly %d digits", PinLength))
		}
	}
	return Pin{digits: digits, guard: guard.NewConstructorGuard()}, nil
}

func (p Pin) Validate() error {
	return p.guard.Validate(ErrPinIsNotConstructed)
}

// Matches compares in constant time. Only a full, exact match counts.
func (p Pin) Matches(other Pin) bool {
	if p.Validate() != nil || other.Validate() != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(p.digits), []byte(other.digits)) == 1
}

func (p Pin) String() string {
	return p.digits
}
