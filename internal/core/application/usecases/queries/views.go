package queries

import (
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/locker"
	"ecolocker/internal/core/domain/model/order"
)

type LockerView struct {
	ID                    kernel.UUID
	Name                  string
	Address               string
	Latitude              float64
	Longitude             float64
	TotalCompartments     int
	AvailableCompartments int
	Status                string
}

func NewLockerView(l *locker.Locker) LockerView {
	return LockerView{
		ID:                    l.ID(),
		Name:                  l.Name(),
		Address:               l.Address(),
		Latitude:              l.Coordinates().Latitude(),
		Longitude:             l.Coordinates().Longitude(),
		TotalCompartments:     l.TotalCompartments(),
		AvailableCompartments: l.AvailableCompartments(),
		Status:                l.Status().String(),
	}
}

type NearbyLockerView struct {
	LockerView
	DistanceKm float64
}

// OrderView is an order as shown to one of its parties. PickupPin is only set when
// the viewer is the buyer.
type OrderView struct {
	ID                kernel.UUID
	ListingID         kernel.UUID
	LockerID          kernel.UUID
	BuyerID           kernel.UUID
	SellerID          kernel.UUID
	ItemPrice         kernel.Money
	DeliveryFee       kernel.Money
	TotalPrice        kernel.Money
	Status            order.Status
	CompartmentNumber *int
	PickupPin         *string
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

func NewOrderView(o *order.Order, viewer kernel.UUID) OrderView {
	v := OrderView{
		ID:                o.ID(),
		ListingID:         o.ListingID(),
		LockerID:          o.LockerID(),
		BuyerID:           o.BuyerID(),
		SellerID:          o.SellerID(),
		ItemPrice:         o.ItemPrice(),
		DeliveryFee:       o.DeliveryFee(),
		TotalPrice:        o.TotalPrice(),
		Status:            o.Status(),
		CompartmentNumber: o.CompartmentNumber(),
		ReservedAt:        o.ReservedAt(),
		PaymentDeadline:   o.PaymentDeadline(),
		PaidAt:            o.PaidAt(),
		PickupScheduledAt: o.PickupScheduledAt(),
		RiderPickedUpAt:   o.RiderPickedUpAt(),
		DeliveredAt:       o.DeliveredAt(),
		PickedUpAt:        o.PickedUpAt(),
		ExpiresAt:         o.ExpiresAt(),
		CancelReason:      o.CancelReason(),
	}
	if pin := o.PickupPin(); pin != nil && o.IsBuyer(viewer) {
		s := pin.String()
		v.PickupPin = &s
	}
	return v
}
