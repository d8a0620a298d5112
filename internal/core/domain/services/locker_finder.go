package services

import (
	"sort"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/locker"
)

// NearbyLocker pairs a locker with its distance from the search origin.
type NearbyLocker struct {
	Locker     *locker.Locker
	DistanceKm float64
}

// FindNearby keeps the active lockers within radiusKm of origin, closest first.
// Lockers at the same distance keep their input order.
func FindNearby(lockers []*locker.Locker, origin kernel.Coordinates, radiusKm float64) []NearbyLocker {
	result := make([]NearbyLocker, 0, len(lockers))
	for _, l := range lockers {
		if l == nil || !l.IsActive() {
			continue
		}
		d := l.DistanceKm(origin)
		if d <= radiusKm {
			result = append(result, NearbyLocker{Locker: l, DistanceKm: d})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})
	return result
}
