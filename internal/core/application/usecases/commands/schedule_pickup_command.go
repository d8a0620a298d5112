package commands

import (
	"errors"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"
)

var ErrSchedulePickupCommandIsNotConstructed = errors.New(
	"SchedulePickupCommand must be created via NewSchedulePickupCommand constructor",
)

// SchedulePickupCommand is the seller agreeing a time for the rider to collect the item.
type SchedulePickupCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	sellerID   kernel.UUID
	pickupTime time.Time

	guard guard.ConstructorGuard
}

func NewSchedulePickupCommand(orderID kernel.UUID, sellerID kernel.UUID, pickupTime time.Time) (SchedulePickupCommand, error) {
	var timeErr error
	if pickupTime.IsZero() {
		timeErr = errs.NewValueIsRequiredError("pickupTime")
	}
	if err := errors.Join(orderID.Validate(), sellerID.Validate(), timeErr); err != nil {
		return SchedulePickupCommand{}, err
	}
	return SchedulePickupCommand{
		orderID:    orderID,
		sellerID:   sellerID,
		pickupTime: pickupTime,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c SchedulePickupCommand) Validate() error {
	return c.guard.Validate(ErrSchedulePickupCommandIsNotConstructed)
}

func (c SchedulePickupCommand) OrderID() kernel.UUID  { return c.orderID }
func (c SchedulePickupCommand) SellerID() kernel.UUID { return c.sellerID }
func (c SchedulePickupCommand) PickupTime() time.Time { return c.pickupTime }
