package commands

import (
	"errors"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand is a buyer's request to buy a listing and have it delivered to
// a locker.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), buyerID, listingID, lockerID)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	o, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	buyerID   kernel.UUID
	listingID kernel.UUID
	lockerID  kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID kernel.UUID,
	buyerID kernel.UUID,
	listingID kernel.UUID,
	lockerID kernel.UUID,
) (CreateOrderCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		buyerID.Validate(),
		listingID.Validate(),
		lockerID.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return CreateOrderCommand{
		orderID:   orderID,
		buyerID:   buyerID,
		listingID: listingID,
		lockerID:  lockerID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID   { return c.orderID }
func (c CreateOrderCommand) BuyerID() kernel.UUID   { return c.buyerID }
func (c CreateOrderCommand) ListingID() kernel.UUID { return c.listingID }
func (c CreateOrderCommand) LockerID() kernel.UUID  { return c.lockerID }
