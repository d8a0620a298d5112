package order

import (
	"time"

	"ecolocker/internal/core/domain/model/kernel"
)

// StatusChanged is recorded by the aggregate on every transition and published after
// the transaction that persisted it commits.
type StatusChanged struct {
	OrderID    kernel.UUID
	ListingID  kernel.UUID
	LockerID   kernel.UUID
	BuyerID    kernel.UUID
	SellerID   kernel.UUID
	From       Status
	To         Status
	Reason     string
	OccurredAt time.Time
}
