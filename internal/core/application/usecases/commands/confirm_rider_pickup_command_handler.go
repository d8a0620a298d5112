package commands

import (
	"context"
	"log/slog"

	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"
)

const rewardReasonDropOff = "eco_drop_off"

// ConfirmRiderPickupResult carries the order and the eco points granted to the seller.
// PointsAwarded is 0 when the rewards service could not be reached.
type ConfirmRiderPickupResult struct {
	Order         *order.Order
	PointsAwarded int
}

// ConfirmRiderPickupCommandHandler moves a paid or scheduled order to in_transit and
// awards the seller eco points for the drop-off. The award happens after commit and
// never rolls the transition back.
type ConfirmRiderPickupCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
	rewards    ports.RewardsGateway
	points     int
	logger     *slog.Logger
}

func NewConfirmRiderPickupCommandHandler(
	uowFactory OrderUoWFactory,
	clock ports.Clock,
	rewards ports.RewardsGateway,
	settings Settings,
	logger *slog.Logger,
) ConfirmRiderPickupCommandHandler {
	return ConfirmRiderPickupCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		rewards:    rewards,
		points:     settings.withDefaults().DropOffPoints,
		logger:     loggerOrDiscard(logger).With("component", "confirm_rider_pickup_handler"),
	}
}

func (h *ConfirmRiderPickupCommandHandler) Handle(
	ctx context.Context,
	cmd ConfirmRiderPickupCommand,
) (ConfirmRiderPickupResult, error) {
	if err := cmd.Validate(); err != nil {
		return ConfirmRiderPickupResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ConfirmRiderPickupResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return ConfirmRiderPickupResult{}, err
	}
	if !o.IsSeller(cmd.SellerID()) {
		return ConfirmRiderPickupResult{}, errs.NewObjectNotFoundError("orderId", cmd.OrderID())
	}

	if err = o.ConfirmRiderPickup(h.clock.Now()); err != nil {
		return ConfirmRiderPickupResult{}, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return ConfirmRiderPickupResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return ConfirmRiderPickupResult{}, err
	}

	result := ConfirmRiderPickupResult{Order: o}
	if h.points == 0 {
		return result, nil
	}
	awarded, err := h.rewards.AwardPoints(ctx, o.SellerID(), o.ID(), h.points, rewardReasonDropOff)
	if err != nil {
		h.logger.WarnContext(ctx, "awarding drop-off points failed",
			"order_id", o.ID().String(), "seller_id", o.SellerID().String(), "error", err)
		return result, nil
	}
	result.PointsAwarded = awarded
	return result, nil
}
