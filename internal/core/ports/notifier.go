package ports

import (
	"context"

	"ecolocker/internal/core/domain/model/kernel"
)

// NotificationKind names a message sent to a buyer, seller or the dispatch service.
type NotificationKind string

const (
	NotificationNeedsDelivery      NotificationKind = "needs_delivery"
	NotificationPickupReady        NotificationKind = "pickup_ready"
	NotificationReservationExpired NotificationKind = "reservation_expired"
	NotificationItemUnclaimed      NotificationKind = "item_unclaimed"
	NotificationOrderCancelled     NotificationKind = "order_cancelled"
)

// Notification is a best effort message. Recipients is empty for dispatch signals.
type Notification struct {
	Kind       NotificationKind
	OrderID    kernel.UUID
	LockerID   kernel.UUID
	Recipients []kernel.UUID
	Message    string
}

// Notifier delivers notifications. Callers never let a delivery failure undo a
// committed transition.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
