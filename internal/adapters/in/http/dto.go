package http

import (
	"encoding/json"
	"time"

	"ecolocker/internal/core/application/usecases/queries"
	"ecolocker/internal/core/domain/model/kernel"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type CreateOrderRequest struct {
	ListingID openapi_types.UUID `json:"listingId"`
	LockerID  openapi_types.UUID `json:"lockerId"`
}

type SchedulePickupRequest struct {
	PickupTime time.Time `json:"pickupTime"`
}

type VerifyPinRequest struct {
	Pin string `json:"pin"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type Locker struct {
	ID                    openapi_types.UUID `json:"id"`
	Name                  string             `json:"name"`
	Address               string             `json:"address,omitempty"`
	Latitude              float64            `json:"latitude"`
	Longitude             float64            `json:"longitude"`
	TotalCompartments     int                `json:"totalCompartments"`
	AvailableCompartments int                `json:"availableCompartments"`
	Status                string             `json:"status"`
	DistanceKm            *float64           `json:"distanceKm,omitempty"`
}

// Order renders money as JSON numbers with two decimals, e.g. 12.00.
type Order struct {
	ID                openapi_types.UUID `json:"id"`
	ListingID         openapi_types.UUID `json:"listingId"`
	LockerID          openapi_types.UUID `json:"lockerId"`
	BuyerID           openapi_types.UUID `json:"buyerId"`
	SellerID          openapi_types.UUID `json:"sellerId"`
	ItemPrice         json.Number        `json:"itemPrice"`
	DeliveryFee       json.Number        `json:"deliveryFee"`
	TotalPrice        json.Number        `json:"totalPrice"`
	Status            string             `json:"status"`
	CompartmentNumber *int               `json:"compartmentNumber"`
	PickupPin         *string            `json:"pickupPin,omitempty"`
	ReservedAt        time.Time          `json:"reservedAt"`
	PaymentDeadline   time.Time          `json:"paymentDeadline"`
	PaidAt            *time.Time         `json:"paidAt,omitempty"`
	PickupScheduledAt *time.Time         `json:"pickupScheduledAt,omitempty"`
	RiderPickedUpAt   *time.Time         `json:"riderPickedUpAt,omitempty"`
	DeliveredAt       *time.Time         `json:"deliveredAt,omitempty"`
	PickedUpAt        *time.Time         `json:"pickedUpAt,omitempty"`
	ExpiresAt         *time.Time         `json:"expiresAt,omitempty"`
	CancelReason      string             `json:"cancelReason,omitempty"`
}

type ConfirmPickupResponse struct {
	Order         Order `json:"order"`
	PointsAwarded int   `json:"pointsAwarded"`
}

type VerifyPinResponse struct {
	Order Order `json:"order"`
}

func toLocker(v queries.LockerView) Locker {
	return Locker{
		ID:                    v.ID.Bytes(),
		Name:                  v.Name,
		Address:               v.Address,
		Latitude:              v.Latitude,
		Longitude:             v.Longitude,
		TotalCompartments:     v.TotalCompartments,
		AvailableCompartments: v.AvailableCompartments,
		Status:                v.Status,
	}
}

func toOrder(v queries.OrderView) Order {
	return Order{
		ID:                v.ID.Bytes(),
		ListingID:         v.ListingID.Bytes(),
		LockerID:          v.LockerID.Bytes(),
		BuyerID:           v.BuyerID.Bytes(),
		SellerID:          v.SellerID.Bytes(),
		ItemPrice:         money(v.ItemPrice),
		DeliveryFee:       money(v.DeliveryFee),
		TotalPrice:        money(v.TotalPrice),
		Status:            v.Status.String(),
		CompartmentNumber: v.CompartmentNumber,
		PickupPin:         v.PickupPin,
		ReservedAt:        v.ReservedAt,
		PaymentDeadline:   v.PaymentDeadline,
		PaidAt:            v.PaidAt,
		PickupScheduledAt: v.PickupScheduledAt,
		RiderPickedUpAt:   v.RiderPickedUpAt,
		DeliveredAt:       v.DeliveredAt,
		PickedUpAt:        v.PickedUpAt,
		ExpiresAt:         v.ExpiresAt,
		CancelReason:      v.CancelReason,
	}
}

func money(m kernel.Money) json.Number {
	return json.Number(m.String())
}
