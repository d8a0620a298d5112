package pgtest

import (
	"context"
	"time"

	"ecolocker/internal/adapters/out/postgres/listingrepo"
	"ecolocker/internal/adapters/out/postgres/lockerrepo"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/listing"
	"ecolocker/internal/core/domain/model/locker"
	"ecolocker/internal/core/domain/model/order"
)

// SeedLocker stores an active locker near the Amsterdam centre.
func (d *Database) SeedLocker(ctx context.Context, name string, total int) (*locker.Locker, error) {
	coordinates, err := kernel.NewCoordinates(52.3676, 4.9041)
	if err != nil {
		return nil, err
	}
	l, err := locker.NewLocker(kernel.NewUUID(), name, "Damrak 1", coordinates, total)
	if err != nil {
		return nil, err
	}
	return l, lockerrepo.NewGormLockerRepository(d.DB).Add(ctx, l)
}

// SeedListing stores an active listing owned by sellerID.
func (d *Database) SeedListing(ctx context.Context, sellerID kernel.UUID, price string) (*listing.Listing, error) {
	amount, err := kernel.MoneyFromString(price)
	if err != nil {
		return nil, err
	}
	l, err := listing.RestoreListing(kernel.NewUUID(), sellerID, amount, listing.Active, nil)
	if err != nil {
		return nil, err
	}
	return l, listingrepo.NewGormListingRepository(d.DB).Add(ctx, l)
}

// NewOrder builds a pending order for the listing without storing it.
func NewOrder(l *listing.Listing, lockerID, buyerID kernel.UUID, compartment int, now time.Time) (*order.Order, error) {
	return order.NewOrder(order.NewOrderParams{
		ID:                kernel.NewUUID(),
		ListingID:         l.ID(),
		LockerID:          lockerID,
		BuyerID:           buyerID,
		SellerID:          l.SellerID(),
		ItemPrice:         l.Price(),
		DeliveryFee:       kernel.MustMoney("2.00"),
		CompartmentNumber: compartment,
		Now:               now,
	})
}
