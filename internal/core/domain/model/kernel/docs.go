// Package kernel provides the shared value objects of the EcoLocker order engine.
//
// The package includes:
//   - UUID: identifier of orders, lockers, listings and users
//   - Coordinates: a validated latitude/longitude pair with great-circle distance
//   - Money: a non-negative decimal amount used for item prices and fees
//
// Every value object is immutable and its zero value is invalid; use the
// constructors, which enforce the invariants, to obtain usable values.
package kernel
