package commands

import (
	"context"
	"log/slog"

	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"
)

// VerifyPinCommandHandler completes an order when the buyer enters the right PIN. The
// compartment is released and the listing is marked sold in the same transaction.
// A wrong PIN rolls back and leaves everything as it was.
type VerifyPinCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	logger     *slog.Logger
}

func NewVerifyPinCommandHandler(uowFactory UoWFactory, clock ports.Clock, logger *slog.Logger) VerifyPinCommandHandler {
	return VerifyPinCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     loggerOrDiscard(logger).With("component", "verify_pin_handler"),
	}
}

func (h *VerifyPinCommandHandler) Handle(ctx context.Context, cmd VerifyPinCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if !o.IsBuyer(cmd.BuyerID()) {
		return nil, errs.NewObjectNotFoundError("orderId", cmd.OrderID())
	}

	released, err := o.VerifyPin(cmd.Pin(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = releaseHeld(ctx, uow, o, released, h.logger); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
