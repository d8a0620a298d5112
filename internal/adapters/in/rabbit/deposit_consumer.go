// Package rabbit consumes locker hardware events. A locker.deposited message means the
// rider closed the compartment door on the item, which makes the order ready for
// pickup.
package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DepositedQueue     = "locker.deposited"
	DeadDepositedQueue = "locker.deposited.dead"

	// DefaultRequeueDelay is how long a failed first delivery waits before it is requeued.
	DefaultRequeueDelay = 2 * time.Second
)

type MarkReadyHandler interface {
	Handle(ctx context.Context, cmd commands.MarkReadyForPickupCommand) (*order.Order, error)
}

type consumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type depositedMessage struct {
	OrderID string `json:"orderId"`
}

type DepositConsumer struct {
	ch           consumeChannel
	handler      MarkReadyHandler
	requeueDelay time.Duration
	logger       *slog.Logger
}

// NewDepositConsumer declares the durable queue with its dead-letter queue and limits
// unacknowledged deliveries.
func NewDepositConsumer(conn *amqp.Connection, handler MarkReadyHandler, logger *slog.Logger) (*DepositConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err = ch.QueueDeclare(DeadDepositedQueue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DeadDepositedQueue,
	}
	if _, err = ch.QueueDeclare(DepositedQueue, true, false, false, false, args); err != nil {
		return nil, err
	}
	if err = ch.Qos(16, 0, false); err != nil {
		return nil, err
	}
	return newDepositConsumer(ch, handler, logger), nil
}

func newDepositConsumer(ch consumeChannel, handler MarkReadyHandler, logger *slog.Logger) *DepositConsumer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DepositConsumer{
		ch:           ch,
		handler:      handler,
		requeueDelay: DefaultRequeueDelay,
		logger:       logger.With("component", "deposit_consumer"),
	}
}

// Run consumes until ctx is cancelled or the channel closes.
func (c *DepositConsumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(DepositedQueue, "ecolocker-deposits", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deposit deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle acks processed messages and rejects unprocessable ones to the dead-letter queue.
// Duplicate or late deposits fail with a conflict and are dropped. An infrastructure
// error requeues a first delivery after requeueDelay; a redelivery that fails again is
// dead-lettered.
func (c *DepositConsumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg depositedMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.WarnContext(ctx, "dropping malformed deposit message", slog.Any("error", err))
		_ = d.Reject(false)
		return
	}

	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping deposit with invalid order id", slog.String("orderId", msg.OrderID))
		_ = d.Reject(false)
		return
	}

	cmd, err := commands.NewMarkReadyForPickupCommand(orderID)
	if err != nil {
		_ = d.Reject(false)
		return
	}

	if _, err = c.handler.Handle(ctx, cmd); err != nil {
		var conflict *errs.StateConflictError
		if errors.As(err, &conflict) || errors.Is(err, errs.ErrObjectNotFound) {
			c.logger.WarnContext(ctx, "ignoring deposit",
				slog.String("orderId", orderID.String()), slog.Any("error", err))
			_ = d.Ack(false)
			return
		}
		if d.Redelivered {
			c.logger.ErrorContext(ctx, "deposit handling failed again, dead-lettering",
				slog.String("orderId", orderID.String()), slog.Any("error", err))
			_ = d.Nack(false, false)
			return
		}
		c.logger.ErrorContext(ctx, "deposit handling failed, requeueing",
			slog.String("orderId", orderID.String()), slog.Any("error", err))
		c.wait(ctx)
		_ = d.Nack(false, true)
		return
	}

	c.logger.InfoContext(ctx, "order ready for pickup", slog.String("orderId", orderID.String()))
	_ = d.Ack(false)
}

func (c *DepositConsumer) wait(ctx context.Context) {
	if c.requeueDelay <= 0 {
		return
	}
	t := time.NewTimer(c.requeueDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
