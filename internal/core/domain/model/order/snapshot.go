package order

import (
	"errors"
	"fmt"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
)

// Snapshot is the flat persisted form of an Order.
type Snapshot struct {
	ID                kernel.UUID
	ListingID         kernel.UUID
	LockerID          kernel.UUID
	BuyerID           kernel.UUID
	SellerID          kernel.UUID
	ItemPrice         kernel.Money
	DeliveryFee       kernel.Money
	Status            Status
	CompartmentNumber *int
	PickupPin         *Pin
	ReservedAt        time.Time
	PaymentDeadline   time.Time
	PaidAt            *time.Time
	PickupScheduledAt *time.Time
	RiderPickedUpAt   *time.Time
	DeliveredAt       *time.Time
	PickedUpAt        *time.Time
	ExpiresAt         *time.Time
	CancelReason      string
}

// Snapshot exports the aggregate state for persistence.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                o.id,
		ListingID:         o.listingID,
		LockerID:          o.lockerID,
		BuyerID:           o.buyerID,
		SellerID:          o.sellerID,
		ItemPrice:         o.itemPrice,
		DeliveryFee:       o.deliveryFee,
		Status:            o.status,
		CompartmentNumber: o.compartmentNumber,
		PickupPin:         o.pickupPin,
		ReservedAt:        o.reservedAt,
		PaymentDeadline:   o.paymentDeadline,
		PaidAt:            o.paidAt,
		PickupScheduledAt: o.pickupScheduledAt,
		RiderPickedUpAt:   o.riderPickedUpAt,
		DeliveredAt:       o.deliveredAt,
		PickedUpAt:        o.pickedUpAt,
		ExpiresAt:         o.expiresAt,
		CancelReason:      o.cancelReason,
	}
}

// Restore rebuilds an order loaded from the store. Terminal orders may still carry a
// compartment number (an interrupted release); the reconciliation sweep repairs them.
func Restore(s Snapshot) (*Order, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.ListingID.Validate(),
		s.LockerID.Validate(),
		s.BuyerID.Validate(),
		s.SellerID.Validate(),
		s.ItemPrice.Validate(),
		s.DeliveryFee.Validate(),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	if s.BuyerID.IsEqual(s.SellerID) {
		return nil, errs.NewValueIsInvalidErrorWithCause("sellerId", errors.New("buyer and seller are the same user"))
	}
	if s.Status.HoldsCompartment() && s.CompartmentNumber == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause(
			"compartmentNumber", fmt.Errorf("status %s holds a compartment", s.Status))
	}
	if s.Status == ReadyForPickup && s.PickupPin == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause(
			"pickupPin", fmt.Errorf("status %s requires a pin", s.Status))
	}

	return &Order{
		id:                s.ID,
		listingID:         s.ListingID,
		lockerID:          s.LockerID,
		buyerID:           s.BuyerID,
		sellerID:          s.SellerID,
		itemPrice:         s.ItemPrice,
		deliveryFee:       s.DeliveryFee,
		status:            s.Status,
		compartmentNumber: s.CompartmentNumber,
		pickupPin:         s.PickupPin,
		reservedAt:        s.ReservedAt,
		paymentDeadline:   s.PaymentDeadline,
		paidAt:            s.PaidAt,
		pickupScheduledAt: s.PickupScheduledAt,
		riderPickedUpAt:   s.RiderPickedUpAt,
		deliveredAt:       s.DeliveredAt,
		pickedUpAt:        s.PickedUpAt,
		expiresAt:         s.ExpiresAt,
		cancelReason:      s.CancelReason,
		isConstructed:     true,
	}, nil
}
