package commands

import (
	"context"
	"log/slog"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"
)

// PayOrderCommandHandler moves a pending order to paid and tells dispatch that the item
// needs a rider.
type PayOrderCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewPayOrderCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) PayOrderCommandHandler {
	return PayOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		notifier:   notifier,
		logger:     loggerOrDiscard(logger).With("component", "pay_order_handler"),
	}
}

func (h *PayOrderCommandHandler) Handle(ctx context.Context, cmd PayOrderCommand) (*order.Order, error) {
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

	if err = o.Pay(h.clock.Now()); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	notifyDelivery(ctx, h.notifier, o, h.logger)
	return o, nil
}

func notifyDelivery(ctx context.Context, notifier ports.Notifier, o *order.Order, logger *slog.Logger) {
	err := notifier.Notify(ctx, needsDelivery(o))
	if err != nil {
		logger.WarnContext(ctx, "needs delivery notification failed", "order_id", o.ID().String(), "error", err)
	}
}

func needsDelivery(o *order.Order) ports.Notification {
	return ports.Notification{
		Kind:       ports.NotificationNeedsDelivery,
		OrderID:    o.ID(),
		LockerID:   o.LockerID(),
		Recipients: []kernel.UUID{o.SellerID()},
		Message:    "Order is paid and waiting for a rider",
	}
}
