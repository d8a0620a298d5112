package commands

import (
	"errors"
	"strings"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand is the buyer or the seller calling the order off.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actorID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand trims the reason; a blank reason is a validation error.
func NewCancelOrderCommand(orderID kernel.UUID, actorID kernel.UUID, reason string) (CancelOrderCommand, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(orderID.Validate(), actorID.Validate(), reasonErr); err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{
		orderID: orderID,
		actorID: actorID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CancelOrderCommand) ActorID() kernel.UUID { return c.actorID }
func (c CancelOrderCommand) Reason() string       { return c.reason }
