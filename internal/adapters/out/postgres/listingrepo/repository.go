package listingrepo

import (
	"context"
	"errors"

	"ecolocker/internal/adapters/out/postgres/pgerrors"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/listing"
	"ecolocker/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormListingRepository struct {
	db *gorm.DB
}

func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

func (r *GormListingRepository) Add(ctx context.Context, aggregate *listing.Listing) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	dto := fromDomain(aggregate)
	return pgerrors.Translate(r.db.WithContext(ctx).Create(&dto).Error, "Listing already exists")
}

func (r *GormListingRepository) Update(ctx context.Context, aggregate *listing.Listing) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&ListingDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "buyer_id", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("listingId", aggregate.ID().String())
	}
	return nil
}

func (r *GormListingRepository) Get(ctx context.Context, id kernel.UUID) (*listing.Listing, error) {
	return r.get(ctx, r.db, id)
}

func (r *GormListingRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*listing.Listing, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormListingRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*listing.Listing, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ListingDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("listingId", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
