package commands

import (
	"errors"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/guard"
)

var ErrConfirmRiderPickupCommandIsNotConstructed = errors.New(
	"ConfirmRiderPickupCommand must be created via NewConfirmRiderPickupCommand constructor",
)

// ConfirmRiderPickupCommand is the seller confirming the rider has taken the item.
type ConfirmRiderPickupCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	sellerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewConfirmRiderPickupCommand(orderID kernel.UUID, sellerID kernel.UUID) (ConfirmRiderPickupCommand, error) {
	if err := errors.Join(orderID.Validate(), sellerID.Validate()); err != nil {
		return ConfirmRiderPickupCommand{}, err
	}
	return ConfirmRiderPickupCommand{orderID: orderID, sellerID: sellerID, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmRiderPickupCommand) Validate() error {
	return c.guard.Validate(ErrConfirmRiderPickupCommandIsNotConstructed)
}

func (c ConfirmRiderPickupCommand) OrderID() kernel.UUID  { return c.orderID }
func (c ConfirmRiderPickupCommand) SellerID() kernel.UUID { return c.sellerID }
