package queries

import (
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/locker"
	"ecolocker/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderColumns = `
	id, listing_id, locker_id, buyer_id, seller_id,
	item_price, delivery_fee, status, compartment_number, pickup_pin,
	reserved_at, payment_deadline, paid_at, pickup_scheduled_at,
	rider_picked_up_at, delivered_at, picked_up_at, expires_at, cancel_reason`

const lockerColumns = `
	id, name, address, latitude, longitude,
	total_compartments, available_compartments, status`

type orderRow struct {
	ID                uuid.UUID
	ListingID         uuid.UUID
	LockerID          uuid.UUID
	BuyerID           uuid.UUID
	SellerID          uuid.UUID
	ItemPrice         decimal.Decimal
	DeliveryFee       decimal.Decimal
	Status            string
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
	CancelReason      *string
}

func (r orderRow) view(viewer kernel.UUID) (OrderView, error) {
	ids := make([]kernel.UUID, 0, 5)
	for _, raw := range []uuid.UUID{r.ID, r.ListingID, r.LockerID, r.BuyerID, r.SellerID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return OrderView{}, err
		}
		ids = append(ids, id)
	}

	itemPrice, err := kernel.NewMoney(r.ItemPrice)
	if err != nil {
		return OrderView{}, err
	}
	deliveryFee, err := kernel.NewMoney(r.DeliveryFee)
	if err != nil {
		return OrderView{}, err
	}
	status, err := order.ParseStatus(r.Status)
	if err != nil {
		return OrderView{}, err
	}

	v := OrderView{
		ID:                ids[0],
		ListingID:         ids[1],
		LockerID:          ids[2],
		BuyerID:           ids[3],
		SellerID:          ids[4],
		ItemPrice:         itemPrice,
		DeliveryFee:       deliveryFee,
		TotalPrice:        itemPrice.Add(deliveryFee),
		Status:            status,
		CompartmentNumber: r.CompartmentNumber,
		ReservedAt:        r.ReservedAt.UTC(),
		PaymentDeadline:   r.PaymentDeadline.UTC(),
		PaidAt:            utc(r.PaidAt),
		PickupScheduledAt: utc(r.PickupScheduledAt),
		RiderPickedUpAt:   utc(r.RiderPickedUpAt),
		DeliveredAt:       utc(r.DeliveredAt),
		PickedUpAt:        utc(r.PickedUpAt),
		ExpiresAt:         utc(r.ExpiresAt),
	}
	if r.CancelReason != nil {
		v.CancelReason = *r.CancelReason
	}
	if r.PickupPin != nil && v.BuyerID.IsEqual(viewer) {
		pin := *r.PickupPin
		v.PickupPin = &pin
	}
	return v, nil
}

type lockerRow struct {
	ID                    uuid.UUID
	Name                  string
	Address               string
	Latitude              float64
	Longitude             float64
	TotalCompartments     int
	AvailableCompartments int
	Status                string
}

func (r lockerRow) locker() (*locker.Locker, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return nil, err
	}
	coordinates, err := kernel.NewCoordinates(r.Latitude, r.Longitude)
	if err != nil {
		return nil, err
	}
	status, err := locker.ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}
	return locker.RestoreLocker(id, r.Name, r.Address, coordinates,
		r.TotalCompartments, r.AvailableCompartments, status)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
