package commands

import (
	"errors"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/guard"
)

var ErrPayOrderCommandIsNotConstructed = errors.New(
	"PayOrderCommand must be created via NewPayOrderCommand constructor",
)

// PayOrderCommand records the buyer's payment for a pending order.
type PayOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	buyerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewPayOrderCommand(orderID kernel.UUID, buyerID kernel.UUID) (PayOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), buyerID.Validate()); err != nil {
		return PayOrderCommand{}, err
	}
	return PayOrderCommand{orderID: orderID, buyerID: buyerID, guard: guard.NewConstructorGuard()}, nil
}

func (c PayOrderCommand) Validate() error {
	return c.guard.Validate(ErrPayOrderCommandIsNotConstructed)
}

func (c PayOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c PayOrderCommand) BuyerID() kernel.UUID { return c.buyerID }
