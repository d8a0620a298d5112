package order

import (
	"fmt"

	"ecolocker/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	PendingPayment ──> Paid ──> PickupScheduled ──> InTransit ──> ReadyForPickup ──> Collected
//	   │    │           │  └──────────────────────────┘                │
//	   │    └─> Expired │             │                                └──> Expired
//	   └────────────────┴──> Cancelled <┘
type Status int

const (
	// Unknown catches uninitialized and unparseable values.
	Unknown Status = iota
	PendingPayment
	Paid
	PickupScheduled
	InTransit
	ReadyForPickup
	Collected
	Cancelled
	Expired
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "unknown",
		PendingPayment:  "pending_payment",
		Paid:            "paid",
		PickupScheduled: "pickup_scheduled",
		InTransit:       "in_transit",
		ReadyForPickup:  "ready_for_pickup",
		Collected:       "collected",
		Cancelled:       "cancelled",
		Expired:         "expired",
	}
}

// allowedTransitions is the complete transition table. A status that is missing from
// the returned slice of its predecessor can never follow it.
func (s Status) allowedTransitions() []Status {
	switch s {
	case PendingPayment:
		return []Status{Paid, Cancelled, Expired}
	case Paid:
		return []Status{PickupScheduled, InTransit, Cancelled}
	case PickupScheduled:
		return []Status{InTransit, Cancelled}
	case InTransit:
		return []Status{ReadyForPickup}
	case ReadyForPickup:
		return []Status{Collected, Expired}
	case Collected, Cancelled, Expired, Unknown:
		return nil
	}
	return nil
}

// ParseStatus maps the persisted name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Expired {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no transition can leave s.
func (s Status) IsTerminal() bool {
	return s == Collected || s == Cancelled || s == Expired
}

// HoldsCompartment reports whether an order in s keeps a compartment reserved.
func (s Status) HoldsCompartment() bool {
	return s.Validate() == nil && !s.IsTerminal()
}

// IsCancellable reports whether the buyer or seller may still cancel.
func (s Status) IsCancellable() bool {
	return s == PendingPayment || s == Paid || s == PickupScheduled
}

// CanTransitionTo reports whether next directly follows s in the transition table.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range s.allowedTransitions() {
		if allowed == next {
			return true
		}
	}
	return false
}

// transitionTo returns next when the move is legal and a conflict carrying message
// otherwise.
func (s Status) transitionTo(next Status, message string) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, errs.NewStateConflictErrorWithCause(
			message,
			fmt.Errorf("transition %s -> %s is not allowed", s, next),
		)
	}
	return next, nil
}

// AllStatuses lists every known status in lifecycle order.
func AllStatuses() []Status {
	return []Status{PendingPayment, Paid, PickupScheduled, InTransit, ReadyForPickup, Collected, Cancelled, Expired}
}

// StatusNames returns the names of the statuses matching keep.
func StatusNames(keep func(Status) bool) []string {
	var names []string
	for _, s := range AllStatuses() {
		if keep(s) {
			names = append(names, s.String())
		}
	}
	return names
}
