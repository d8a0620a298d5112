package ports

import (
	"context"

	"ecolocker/internal/core/domain/model/order"
)

// EventPublisher receives order status changes after the transaction that produced
// them has committed.
type EventPublisher interface {
	Publish(ctx context.Context, events []order.StatusChanged) error
}
