package commands

import (
	"context"
	"log/slog"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/ports"
)

// ExpireUnclaimedPickupsCommandHandler expires ready_for_pickup orders whose pickup
// window is over and tells both parties the item was not collected.
type ExpireUnclaimedPickupsCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
	batchSize  int
	logger     *slog.Logger
}

func NewExpireUnclaimedPickupsCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	notifier ports.Notifier,
	settings Settings,
	logger *slog.Logger,
) ExpireUnclaimedPickupsCommandHandler {
	return ExpireUnclaimedPickupsCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		notifier:   notifier,
		batchSize:  settings.withDefaults().SweepBatchSize,
		logger:     loggerOrDiscard(logger).With("component", "pickup_expiry_sweep"),
	}
}

// Handle returns the number of orders expired.
func (h *ExpireUnclaimedPickupsCommandHandler) Handle(ctx context.Context, cmd ExpireUnclaimedPickupsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.Now()
	repo := h.uowFactory.Create().OrderRepository()
	find := func(ctx context.Context, skip []kernel.UUID) ([]kernel.UUID, error) {
		return repo.FindPickupExpired(ctx, now, h.batchSize, skip)
	}
	return sweepPages(ctx, h.logger, h.batchSize, find, func(ctx context.Context, id kernel.UUID) error {
		return h.expire(ctx, id, now)
	})
}

func (h *ExpireUnclaimedPickupsCommandHandler) expire(ctx context.Context, id kernel.UUID, now time.Time) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, id)
	if err != nil {
		return err
	}

	released, err := o.ExpireUnclaimed(now)
	if err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err = releaseHeld(ctx, uow, o, released, h.logger); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	err = h.notifier.Notify(ctx, ports.Notification{
		Kind:       ports.NotificationItemUnclaimed,
		OrderID:    o.ID(),
		LockerID:   o.LockerID(),
		Recipients: []kernel.UUID{o.BuyerID(), o.SellerID()},
		Message:    "The item was not collected before the pickup window closed",
	})
	if err != nil {
		h.logger.WarnContext(ctx, "item unclaimed notification failed", "order_id", id.String(), "error", err)
	}
	return nil
}
