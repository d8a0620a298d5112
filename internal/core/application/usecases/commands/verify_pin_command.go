package commands

import (
	"errors"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/guard"
)

var ErrVerifyPinCommandIsNotConstructed = errors.New(
	"VerifyPinCommand must be created via NewVerifyPinCommand constructor",
)

// VerifyPinCommand is the buyer typing the PIN at the locker. A malformed PIN is
// rejected here, before any store access.
type VerifyPinCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	buyerID kernel.UUID
	pin     order.Pin

	guard guard.ConstructorGuard
}

func NewVerifyPinCommand(orderID kernel.UUID, buyerID kernel.UUID, pin string) (VerifyPinCommand, error) {
	p, pinErr := order.NewPin(pin)
	if err := errors.Join(orderID.Validate(), buyerID.Validate(), pinErr); err != nil {
		return VerifyPinCommand{}, err
	}
	return VerifyPinCommand{orderID: orderID, buyerID: buyerID, pin: p, guard: guard.NewConstructorGuard()}, nil
}

func (c VerifyPinCommand) Validate() error {
	return c.guard.Validate(ErrVerifyPinCommandIsNotConstructed)
}

func (c VerifyPinCommand) OrderID() kernel.UUID { return c.orderID }
func (c VerifyPinCommand) BuyerID() kernel.UUID { return c.buyerID }
func (c VerifyPinCommand) Pin() order.Pin       { return c.pin }
