package ports

import (
	"context"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/listing"
)

// ListingRepository gives the order workflow access to the marketplace listing it
// moves between active, reserved and sold.
type ListingRepository interface {
	Add(ctx context.Context, aggregate *listing.Listing) error
	Update(ctx context.Context, aggregate *listing.Listing) error
	Get(ctx context.Context, id kernel.UUID) (*listing.Listing, error)
	GetForUpdate(ctx context.Context, id kernel.UUID) (*listing.Listing, error)
}
