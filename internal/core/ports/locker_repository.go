package ports

import (
	"context"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/locker"
)

// LockerRepository is the compartment allocator. AllocateCompartment and
// ReleaseCompartment are single conditional updates against the locker row, so
// 0 <= available <= total holds under any interleaving of callers.
type LockerRepository interface {
	Add(ctx context.Context, aggregate *locker.Locker) error

	// Get returns the locker or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*locker.Locker, error)

	// GetForUpdate is Get plus a row lock. Allocation takes the same lock, so a
	// holder sees every committed allocation for the locker.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*locker.Locker, error)

	// GetAll returns every locker.
	GetAll(ctx context.Context) ([]*locker.Locker, error)

	// GetAllActive returns lockers that accept new orders.
	GetAllActive(ctx context.Context) ([]*locker.Locker, error)

	// AllocateCompartment takes one compartment from an active locker and returns
	// the lowest compartment number not held by a live order. It returns a
	// StateConflictError when nothing is free.
	AllocateCompartment(ctx context.Context, lockerID kernel.UUID) (int, error)

	// ReleaseCompartment gives one compartment back. At full capacity it is a no-op
	// and reports false.
	ReleaseCompartment(ctx context.Context, lockerID kernel.UUID) (bool, error)

	// SetAvailable overwrites the counter; used by reconciliation only.
	SetAvailable(ctx context.Context, lockerID kernel.UUID, available int) error
}
