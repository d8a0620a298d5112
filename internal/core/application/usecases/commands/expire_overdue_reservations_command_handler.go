package commands

import (
	"context"
	"log/slog"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/ports"
)

// ExpireOverdueReservationsCommandHandler expires pending_payment orders whose payment
// deadline has passed. Each order gets its own transaction that re-reads it under a
// row lock, so a buyer paying at the last second either wins or makes the sweep skip
// the row.
type ExpireOverdueReservationsCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
	batchSize  int
	logger     *slog.Logger
}

func NewExpireOverdueReservationsCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	notifier ports.Notifier,
	settings Settings,
	logger *slog.Logger,
) ExpireOverdueReservationsCommandHandler {
	return ExpireOverdueReservationsCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		notifier:   notifier,
		batchSize:  settings.withDefaults().SweepBatchSize,
		logger:     loggerOrDiscard(logger).With("component", "reservation_timeout_sweep"),
	}
}

// Handle returns the number of orders expired.
func (h *ExpireOverdueReservationsCommandHandler) Handle(ctx context.Context, cmd ExpireOverdueReservationsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.Now()
	repo := h.uowFactory.Create().OrderRepository()
	find := func(ctx context.Context, skip []kernel.UUID) ([]kernel.UUID, error) {
		return repo.FindPaymentOverdue(ctx, now, h.batchSize, skip)
	}
	return sweepPages(ctx, h.logger, h.batchSize, find, func(ctx context.Context, id kernel.UUID) error {
		return h.expire(ctx, id, now)
	})
}

func (h *ExpireOverdueReservationsCommandHandler) expire(ctx context.Context, id kernel.UUID, now time.Time) error {
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

	released, err := o.ExpireReservation(now)
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
		Kind:       ports.NotificationReservationExpired,
		OrderID:    o.ID(),
		LockerID:   o.LockerID(),
		Recipients: []kernel.UUID{o.BuyerID()},
		Message:    "Your reservation expired because payment was not received in time",
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reservation expired notification failed", "order_id", id.String(), "error", err)
	}
	return nil
}
