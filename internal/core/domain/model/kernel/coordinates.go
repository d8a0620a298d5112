package kernel

import (
	"errors"
	"fmt"
	"math"

	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	earthRadiusKm = 6371.0
)

// ErrCoordinatesAreNotConstructed is returned for a zero-value Coordinates.
var ErrCoordinatesAreNotConstructed = errs.NewValueIsRequiredError(
	"coordinates must be created via NewCoordinates")

// Coordinates is a WGS84 latitude/longitude pair. Lockers are placed with it and
// the nearby search measures great-circle distances between two of them.
type Coordinates struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewCoordinates validates that lat is within [-90, 90] and lng within [-180, 180].
func NewCoordinates(lat, lng float64) (Coordinates, error) {
	c := Coordinates{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(c.setLatitude(lat), c.setLongitude(lng)); err != nil {
		return Coordinates{}, err
	}

	return c, nil
}

func (c Coordinates) Validate() error {
	return c.guard.Validate(ErrCoordinatesAreNotConstructed)
}

func (c Coordinates) Latitude() float64 {
	return c.lat
}

func (c Coordinates) Longitude() float64 {
	return c.lng
}

func (c Coordinates) IsEqual(other Coordinates) bool {
	return c.lat == other.lat && c.lng == other.lng
}

func (c Coordinates) String() string {
	return fmt.Sprintf("Coordinates(%.6f,%.6f)", c.lat, c.lng)
}

// DistanceKm returns the haversine distance between c and other in kilometres.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	lat1 := degreesToRadians(c.lat)
	lat2 := degreesToRadians(other.lat)
	dLat := lat2 - lat1
	dLng := degreesToRadians(other.lng - c.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func (c *Coordinates) setLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}
	c.lat = lat
	return nil
}

func (c *Coordinates) setLongitude(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", lng, MinLongitude, MaxLongitude)
	}
	c.lng = lng
	return nil
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
