package commands

import (
	"context"
	"log/slog"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"
)

// CancelOrderCommandHandler cancels an order that has not left the seller yet, frees
// its compartment and puts the listing back on the market. The other party is told
// after commit.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		notifier:   notifier,
		logger:     loggerOrDiscard(logger).With("component", "cancel_order_handler"),
	}
}

func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
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
	if !o.IsParty(cmd.ActorID()) {
		return nil, errs.NewObjectNotFoundError("orderId", cmd.OrderID())
	}

	released, err := o.Cancel(cmd.Reason(), h.clock.Now())
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

	other := o.SellerID()
	if o.IsSeller(cmd.ActorID()) {
		other = o.BuyerID()
	}
	err = h.notifier.Notify(ctx, ports.Notification{
		Kind:       ports.NotificationOrderCancelled,
		OrderID:    o.ID(),
		LockerID:   o.LockerID(),
		Recipients: []kernel.UUID{other},
		Message:    "Order was cancelled: " + o.CancelReason(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "cancellation notification failed", "order_id", o.ID().String(), "error", err)
	}
	return o, nil
}
