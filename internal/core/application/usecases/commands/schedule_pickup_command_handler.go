package commands

import (
	"context"

	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"
)

type SchedulePickupCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewSchedulePickupCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) SchedulePickupCommandHandler {
	return SchedulePickupCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle moves a paid order to pickup_scheduled. Only the seller may schedule.
func (h *SchedulePickupCommandHandler) Handle(ctx context.Context, cmd SchedulePickupCommand) (*order.Order, error) {
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
	if !o.IsSeller(cmd.SellerID()) {
		return nil, errs.NewObjectNotFoundError("orderId", cmd.OrderID())
	}

	if err = o.SchedulePickup(cmd.PickupTime(), h.clock.Now()); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
