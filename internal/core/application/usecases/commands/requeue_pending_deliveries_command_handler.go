package commands

import (
	"context"
	"log/slog"
	"time"

	"ecolocker/internal/core/ports"

	"github.com/cenkalti/backoff/v4"
)

// RequeuePendingDeliveriesCommandHandler never changes order state. Each notification
// is retried with exponential backoff up to the configured number of retries; an order
// that still fails is logged and left for the next start.
type RequeuePendingDeliveriesCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
	threshold  time.Duration
	retries    uint64
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

func NewRequeuePendingDeliveriesCommandHandler(
	uowFactory OrderUoWFactory,
	clock ports.Clock,
	notifier ports.Notifier,
	settings Settings,
	logger *slog.Logger,
) RequeuePendingDeliveriesCommandHandler {
	s := settings.withDefaults()
	return RequeuePendingDeliveriesCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		notifier:   notifier,
		threshold:  s.RequeueThreshold,
		retries:    s.RequeueRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     loggerOrDiscard(logger).With("component", "startup_requeue"),
	}
}

// WithBackOff replaces the retry schedule.
func (h RequeuePendingDeliveriesCommandHandler) WithBackOff(newBackOff func() backoff.BackOff) RequeuePendingDeliveriesCommandHandler {
	h.newBackOff = newBackOff
	return h
}

// Handle returns the number of orders whose signal was delivered.
func (h *RequeuePendingDeliveriesCommandHandler) Handle(ctx context.Context, cmd RequeuePendingDeliveriesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	olderThan := h.clock.Now().Add(-h.threshold)
	orders, err := h.uowFactory.Create().OrderRepository().FindAwaitingDelivery(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, o := range orders {
		n := needsDelivery(o)
		policy := backoff.WithContext(backoff.WithMaxRetries(h.newBackOff(), h.retries), ctx)
		attempts := 0
		err = backoff.Retry(func() error {
			attempts++
			return h.notifier.Notify(ctx, n)
		}, policy)
		if err != nil {
			h.logger.ErrorContext(ctx, "requeue gave up",
				"order_id", o.ID().String(), "status", o.Status().String(), "attempts", attempts, "error", err)
			continue
		}
		sent++
	}

	if len(orders) > 0 {
		h.logger.InfoContext(ctx, "requeued pending deliveries", "found", len(orders), "sent", sent)
	}
	return sent, nil
}
