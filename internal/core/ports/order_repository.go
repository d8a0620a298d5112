package ports

import (
	"context"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Orders are never deleted; terminal orders stay as history.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the current state of an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns the order or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get plus a row lock held until the transaction ends, so the
	// status read and the status write happen against the same version of the row.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListByBuyer and ListBySeller return the actor's orders, newest first.
	ListByBuyer(ctx context.Context, buyerID kernel.UUID) ([]*order.Order, error)
	ListBySeller(ctx context.Context, sellerID kernel.UUID) ([]*order.Order, error)

	// FindPaymentOverdue returns ids of pending_payment orders whose payment
	// deadline is before now, oldest deadline first, leaving out skip.
	FindPaymentOverdue(ctx context.Context, now time.Time, limit int, skip []kernel.UUID) ([]kernel.UUID, error)

	// FindPickupExpired returns ids of ready_for_pickup orders whose pickup window
	// ended before now, leaving out skip.
	FindPickupExpired(ctx context.Context, now time.Time, limit int, skip []kernel.UUID) ([]kernel.UUID, error)

	// FindAwaitingDelivery returns paid and pickup_scheduled orders that entered
	// that state before olderThan.
	FindAwaitingDelivery(ctx context.Context, olderThan time.Time) ([]*order.Order, error)

	// FindStaleCompartments returns ids of terminal orders that still carry a
	// compartment number.
	FindStaleCompartments(ctx context.Context) ([]kernel.UUID, error)

	// CountHeldCompartments counts the non-terminal orders at a locker.
	CountHeldCompartments(ctx context.Context, lockerID kernel.UUID) (int, error)
}
