package commands

import (
	"errors"

	"ecolocker/internal/pkg/guard"
)

var ErrExpireOverdueReservationsCommandIsNotConstructed = errors.New(
	"ExpireOverdueReservationsCommand must be created via NewExpireOverdueReservationsCommand constructor",
)

// ExpireOverdueReservationsCommand triggers the reservation-timeout sweep.
type ExpireOverdueReservationsCommand struct {
	guard guard.ConstructorGuard
}

func NewExpireOverdueReservationsCommand() ExpireOverdueReservationsCommand {
	return ExpireOverdueReservationsCommand{guard: guard.NewConstructorGuard()}
}

func (c ExpireOverdueReservationsCommand) Validate() error {
	return c.guard.Validate(ErrExpireOverdueReservationsCommandIsNotConstructed)
}
