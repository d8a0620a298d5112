package commands

import (
	"errors"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/guard"
)

var ErrMarkReadyForPickupCommandIsNotConstructed = errors.New(
	"MarkReadyForPickupCommand must be created via NewMarkReadyForPickupCommand constructor",
)

// MarkReadyForPickupCommand is raised by the locker once the rider deposited the item.
// It has no human actor.
type MarkReadyForPickupCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewMarkReadyForPickupCommand(orderID kernel.UUID) (MarkReadyForPickupCommand, error) {
	if err := orderID.Validate(); err != nil {
		return MarkReadyForPickupCommand{}, err
	}
	return MarkReadyForPickupCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkReadyForPickupCommand) Validate() error {
	return c.guard.Validate(ErrMarkReadyForPickupCommandIsNotConstructed)
}

func (c MarkReadyForPickupCommand) OrderID() kernel.UUID { return c.orderID }
