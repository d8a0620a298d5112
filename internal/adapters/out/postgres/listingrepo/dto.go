// Package listingrepo stores the listing columns the order workflow reads and flips.
package listingrepo

import (
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/listing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SellerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status    string          `gorm:"type:varchar(16);not null"`
	BuyerID   *uuid.UUID      `gorm:"type:uuid"`
	UpdatedAt time.Time
}

func (ListingDTO) TableName() string {
	return "listings"
}

func fromDomain(l *listing.Listing) ListingDTO {
	dto := ListingDTO{
		ID:       l.ID().Bytes(),
		SellerID: l.SellerID().Bytes(),
		Price:    l.Price().Decimal(),
		Status:   string(l.Status()),
	}
	if buyer := l.BuyerID(); buyer != nil {
		raw := buyer.Bytes()
		dto.BuyerID = &raw
	}
	return dto
}

func toDomain(dto ListingDTO) (*listing.Listing, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}
	price, err := kernel.NewMoney(dto.Price)
	if err != nil {
		return nil, err
	}
	status, err := listing.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var buyerID *kernel.UUID
	if dto.BuyerID != nil {
		b, bErr := kernel.UUIDFromBytes(dto.BuyerID[:])
		if bErr != nil {
			return nil, bErr
		}
		buyerID = &b
	}

	return listing.RestoreListing(id, sellerID, price, status, buyerID)
}
