package locker

import (
	"fmt"

	"ecolocker/internal/pkg/errs"
)

// Status tells whether a locker accepts new reservations.
type Status string

const (
	Active   Status = "active"
	Inactive Status = "inactive"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Active, Inactive:
		return Status(s), nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a locker status", s))
	}
}

func (s Status) String() string {
	return string(s)
}
