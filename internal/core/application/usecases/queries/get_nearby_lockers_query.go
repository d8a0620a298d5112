package queries

import (
	"context"
	"errors"
	"math"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/services"
	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"

	"gorm.io/gorm"
)

const (
	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 100.0
)

var ErrGetNearbyLockersQueryIsNotConstructed = errors.New(
	"GetNearbyLockersQuery must be created via NewGetNearbyLockersQuery constructor",
)

type GetNearbyLockersQuery struct {
	origin   kernel.Coordinates
	radiusKm float64
	guard    guard.ConstructorGuard
}

// NewGetNearbyLockersQuery validates the search origin and radius. A zero radius means
// DefaultNearbyRadiusKm.
func NewGetNearbyLockersQuery(lat, lng, radiusKm float64) (GetNearbyLockersQuery, error) {
	origin, err := kernel.NewCoordinates(lat, lng)
	if err != nil {
		return GetNearbyLockersQuery{}, err
	}
	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 || radiusKm > MaxNearbyRadiusKm {
		return GetNearbyLockersQuery{}, errs.NewValueIsOutOfRangeError("radius", radiusKm, 0, MaxNearbyRadiusKm)
	}
	return GetNearbyLockersQuery{
		origin:   origin,
		radiusKm: radiusKm,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetNearbyLockersQuery) Validate() error {
	return q.guard.Validate(ErrGetNearbyLockersQueryIsNotConstructed)
}

func (q GetNearbyLockersQuery) Origin() kernel.Coordinates { return q.origin }
func (q GetNearbyLockersQuery) RadiusKm() float64          { return q.radiusKm }

type GetNearbyLockersQueryHandler struct {
	db *gorm.DB
}

func NewGetNearbyLockersQueryHandler(db *gorm.DB) GetNearbyLockersQueryHandler {
	return GetNearbyLockersQueryHandler{db: db}
}

// Handle returns the active lockers within the radius, closest first.
func (h GetNearbyLockersQueryHandler) Handle(ctx context.Context, query GetNearbyLockersQuery) ([]NearbyLockerView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	lockers, err := activeLockers(ctx, h.db)
	if err != nil {
		return nil, err
	}

	nearby := services.FindNearby(lockers, query.origin, query.radiusKm)
	views := make([]NearbyLockerView, 0, len(nearby))
	for _, n := range nearby {
		views = append(views, NearbyLockerView{
			LockerView: NewLockerView(n.Locker),
			DistanceKm: math.Round(n.DistanceKm*100) / 100,
		})
	}
	return views, nil
}
