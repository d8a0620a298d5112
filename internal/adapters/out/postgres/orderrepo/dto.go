// Package orderrepo persists order aggregates in the locker_orders table.
package orderrepo

import (
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the locker_orders row. Statuses are stored by name so the table reads
// on its own.
type OrderDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ListingID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	LockerID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_locker_orders_locker_status,priority:1"`
	BuyerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemPrice         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryFee       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status            string          `gorm:"type:varchar(32);not null;index:idx_locker_orders_locker_status,priority:2"`
	CompartmentNumber *int
	PickupPin         *string   `gorm:"type:varchar(6)"`
	ReservedAt        time.Time `gorm:"not null"`
	PaymentDeadline   time.Time `gorm:"not null;index"`
	PaidAt            *time.Time
	PickupScheduledAt *time.Time
	RiderPickedUpAt   *time.Time
	DeliveredAt       *time.Time
	PickedUpAt        *time.Time
	ExpiresAt         *time.Time `gorm:"index"`
	CancelReason      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OrderDTO) TableName() string {
	return "locker_orders"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	dto := OrderDTO{
		ID:                s.ID.Bytes(),
		ListingID:         s.ListingID.Bytes(),
		LockerID:          s.LockerID.Bytes(),
		BuyerID:           s.BuyerID.Bytes(),
		SellerID:          s.SellerID.Bytes(),
		ItemPrice:         s.ItemPrice.Decimal(),
		DeliveryFee:       s.DeliveryFee.Decimal(),
		TotalPrice:        o.TotalPrice().Decimal(),
		Status:            s.Status.String(),
		CompartmentNumber: s.CompartmentNumber,
		ReservedAt:        s.ReservedAt,
		PaymentDeadline:   s.PaymentDeadline,
		PaidAt:            s.PaidAt,
		PickupScheduledAt: s.PickupScheduledAt,
		RiderPickedUpAt:   s.RiderPickedUpAt,
		DeliveredAt:       s.DeliveredAt,
		PickedUpAt:        s.PickedUpAt,
		ExpiresAt:         s.ExpiresAt,
	}
	if s.PickupPin != nil {
		pin := s.PickupPin.String()
		dto.PickupPin = &pin
	}
	if s.CancelReason != "" {
		reason := s.CancelReason
		dto.CancelReason = &reason
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	ids := make([]kernel.UUID, 0, 5)
	for _, raw := range []uuid.UUID{dto.ID, dto.ListingID, dto.LockerID, dto.BuyerID, dto.SellerID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	itemPrice, err := kernel.NewMoney(dto.ItemPrice)
	if err != nil {
		return nil, err
	}
	deliveryFee, err := kernel.NewMoney(dto.DeliveryFee)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var pin *order.Pin
	if dto.PickupPin != nil {
		p, pinErr := order.NewPin(*dto.PickupPin)
		if pinErr != nil {
			return nil, pinErr
		}
		pin = &p
	}

	var reason string
	if dto.CancelReason != nil {
		reason = *dto.CancelReason
	}

	return order.Restore(order.Snapshot{
		ID:                ids[0],
		ListingID:         ids[1],
		LockerID:          ids[2],
		BuyerID:           ids[3],
		SellerID:          ids[4],
		ItemPrice:         itemPrice,
		DeliveryFee:       deliveryFee,
		Status:            status,
		CompartmentNumber: dto.CompartmentNumber,
		PickupPin:         pin,
		ReservedAt:        dto.ReservedAt.UTC(),
		PaymentDeadline:   dto.PaymentDeadline.UTC(),
		PaidAt:            utc(dto.PaidAt),
		PickupScheduledAt: utc(dto.PickupScheduledAt),
		RiderPickedUpAt:   utc(dto.RiderPickedUpAt),
		DeliveredAt:       utc(dto.DeliveredAt),
		PickedUpAt:        utc(dto.PickedUpAt),
		ExpiresAt:         utc(dto.ExpiresAt),
		CancelReason:      reason,
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
