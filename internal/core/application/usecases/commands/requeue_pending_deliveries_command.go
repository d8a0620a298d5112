package commands

import (
	"errors"

	"ecolocker/internal/pkg/guard"
)

var ErrRequeuePendingDeliveriesCommandIsNotConstructed = errors.New(
	"RequeuePendingDeliveriesCommand must be created via NewRequeuePendingDeliveriesCommand constructor",
)

// RequeuePendingDeliveriesCommand re-emits the needs-delivery signal for orders that
// have been waiting for a rider longer than the requeue threshold. It runs at startup.
type RequeuePendingDeliveriesCommand struct {
	guard guard.ConstructorGuard
}

func NewRequeuePendingDeliveriesCommand() RequeuePendingDeliveriesCommand {
	return RequeuePendingDeliveriesCommand{guard: guard.NewConstructorGuard()}
}

func (c RequeuePendingDeliveriesCommand) Validate() error {
	return c.guard.Validate(ErrRequeuePendingDeliveriesCommandIsNotConstructed)
}
