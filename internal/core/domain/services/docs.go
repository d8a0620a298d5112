// Package services holds domain logic that does not belong to a single aggregate.
//
// The package includes:
//   - PinGenerator: issues the one-time pickup PIN for an order entering ready_for_pickup
//   - LockerFinder: filters and orders lockers by distance from a point
package services
