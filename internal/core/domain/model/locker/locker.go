package locker

import (
	"errors"
	"fmt"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
)

const (
	MsgNoAvailableCompartments = "No available compartments at this locker"
	MsgLockerIsNotActive       = "Locker is not active"
)

var (
	ErrLockerIsNotConstructed = errors.New("Locker must be created via NewLocker or RestoreLocker")

	// ErrNothingToRelease is returned by Release when every compartment is already free.
	ErrNothingToRelease = errors.New("all compartments are already available")
)

// Locker is a pickup station with a fixed set of compartments.
//
// Invariants:
//   - totalCompartments >= 0
//   - 0 <= availableCompartments <= totalCompartments
type Locker struct {
	id                    kernel.UUID
	name                  string
	address               string
	coordinates           kernel.Coordinates
	totalCompartments     int
	availableCompartments int
	status                Status

	isConstructed bool
}

// NewLocker creates an active locker with every compartment available.
func NewLocker(
	id kernel.UUID,
	name string,
	address string,
	coordinates kernel.Coordinates,
	totalCompartments int,
) (*Locker, error) {
	return RestoreLocker(id, name, address, coordinates, totalCompartments, totalCompartments, Active)
}

// RestoreLocker rebuilds a locker from persistence, re-checking every invariant.
func RestoreLocker(
	id kernel.UUID,
	name string,
	address string,
	coordinates kernel.Coordinates,
	totalCompartments int,
	availableCompartments int,
	status Status,
) (*Locker, error) {
	l := &Locker{
		address:       address,
		status:        status,
		isConstructed: true,
	}

	if err := errors.Join(
		l.setID(id),
		l.setName(name),
		l.setCoordinates(coordinates),
		l.setCompartments(totalCompartments, availableCompartments),
	); err != nil {
		return nil, err
	}

	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Locker) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLockerIsNotConstructed
	}
	return nil
}

func (l *Locker) ID() kernel.UUID                 { return l.id }
func (l *Locker) Name() string                    { return l.name }
func (l *Locker) Address() string                 { return l.address }
func (l *Locker) Coordinates() kernel.Coordinates { return l.coordinates }
func (l *Locker) TotalCompartments() int          { return l.totalCompartments }
func (l *Locker) AvailableCompartments() int      { return l.availableCompartments }
func (l *Locker) Status() Status                  { return l.status }
func (l *Locker) IsActive() bool                  { return l.status == Active }

// CanAllocate reports why a new reservation cannot take a compartment, if it can't.
func (l *Locker) CanAllocate() error {
	if !l.IsActive() {
		return errs.NewStateConflictError(MsgLockerIsNotActive)
	}
	if l.availableCompartments < 1 {
		return errs.NewStateConflictError(MsgNoAvailableCompartments)
	}
	return nil
}

// Allocate takes one compartment. It is the in-memory form of the conditional UPDATE
// in lockerrepo.AllocateCompartment, which is what the order flow runs against Postgres.
func (l *Locker) Allocate() error {
	if err := l.CanAllocate(); err != nil {
		return err
	}
	l.availableCompartments--
	return nil
}

// Release gives one compartment back. It never lets the counter exceed the total.
// lockerrepo.ReleaseCompartment applies the same bound in SQL.
func (l *Locker) Release() error {
	if l.availableCompartments >= l.totalCompartments {
		return ErrNothingToRelease
	}
	l.availableCompartments++
	return nil
}

// Reconcile sets the available counter from the number of compartments held by live
// orders. It reports whether the stored counter had drifted.
func (l *Locker) Reconcile(held int) (bool, error) {
	if held < 0 || held > l.totalCompartments {
		return false, errs.NewValueIsOutOfRangeError("held", held, 0, l.totalCompartments)
	}
	expected := l.totalCompartments - held
	if expected == l.availableCompartments {
		return false, nil
	}
	l.availableCompartments = expected
	return true, nil
}

// DistanceKm returns the distance between the locker and a point.
func (l *Locker) DistanceKm(from kernel.Coordinates) float64 {
	return l.coordinates.DistanceKm(from)
}

func (l *Locker) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.id = id
	return nil
}

func (l *Locker) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	l.name = name
	return nil
}

func (l *Locker) setCoordinates(c kernel.Coordinates) error {
	if err := c.Validate(); err != nil {
		return err
	}
	l.coordinates = c
	return nil
}

func (l *Locker) setCompartments(total, available int) error {
	if total < 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalCompartments", fmt.Errorf("%d is negative", total))
	}
	if available < 0 || available > total {
		return errs.NewValueIsOutOfRangeError("availableCompartments", available, 0, total)
	}
	l.totalCompartments = total
	l.availableCompartments = available
	return nil
}
