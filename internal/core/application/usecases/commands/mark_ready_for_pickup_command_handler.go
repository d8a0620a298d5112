package commands

import (
	"context"
	"log/slog"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/domain/services"
	"ecolocker/internal/core/ports"
)

// MarkReadyForPickupCommandHandler issues the pickup PIN for an order in transit and
// tells the buyer the item is waiting.
type MarkReadyForPickupCommandHandler struct {
	uowFactory   OrderUoWFactory
	clock        ports.Clock
	pins         services.PinGenerator
	notifier     ports.Notifier
	pickupWindow time.Duration
	logger       *slog.Logger
}

func NewMarkReadyForPickupCommandHandler(
	uowFactory OrderUoWFactory,
	clock ports.Clock,
	pins services.PinGenerator,
	notifier ports.Notifier,
	settings Settings,
	logger *slog.Logger,
) MarkReadyForPickupCommandHandler {
	return MarkReadyForPickupCommandHandler{
		uowFactory:   uowFactory,
		clock:        clock,
		pins:         pins,
		notifier:     notifier,
		pickupWindow: settings.withDefaults().PickupWindow,
		logger:       loggerOrDiscard(logger).With("component", "mark_ready_handler"),
	}
}

func (h *MarkReadyForPickupCommandHandler) Handle(ctx context.Context, cmd MarkReadyForPickupCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	pin, err := h.pins.Generate()
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
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

	if err = o.MarkReadyForPickup(pin, h.clock.Now(), h.pickupWindow); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	err = h.notifier.Notify(ctx, ports.Notification{
		Kind:       ports.NotificationPickupReady,
		OrderID:    o.ID(),
		LockerID:   o.LockerID(),
		Recipients: []kernel.UUID{o.BuyerID()},
		Message:    "Your item is waiting in the locker",
	})
	if err != nil {
		h.logger.WarnContext(ctx, "pickup ready notification failed", "order_id", o.ID().String(), "error", err)
	}
	return o, nil
}
