package order

import (
	"errors"
	"fmt"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
)

const (
	MsgSelfPurchase           = "You cannot buy your own listing"
	MsgNotAwaitingPayment     = "Order is not awaiting payment"
	MsgNotPaid                = "Order must be paid before scheduling pickup"
	MsgNotReadyForRider       = "Order is not ready for rider pickup"
	MsgNotInTransit           = "Order is not in transit"
	MsgNotReadyForPickup      = "Order is not ready for pickup"
	MsgInvalidPin             = "Invalid PIN"
	MsgCannotCancelCompleted  = "Cannot cancel a completed order"
	MsgAlreadyCancelled       = "Order is already cancelled"
	MsgAlreadyExpired         = "Order has already expired"
	MsgNoLongerCancellable    = "Order can no longer be cancelled"
	MsgPaymentDeadlineNotYet  = "Payment deadline has not passed"
	MsgPickupWindowNotElapsed = "Pickup window has not elapsed"

	ReasonPaymentDeadline     = "payment deadline exceeded"
	ReasonPickupWindowElapsed = "pickup window elapsed"

	DefaultPaymentWindow = 30 * time.Minute
	DefaultPickupWindow  = 24 * time.Hour
)

// ErrOrderIsNotConstructed is returned for an Order that did not come from NewOrder
// or Restore.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the aggregate root of the locker fulfilment workflow.
//
// Invariants:
//   - buyerID != sellerID
//   - totalPrice == itemPrice + deliveryFee
//   - a non-terminal order holds exactly one compartment
//   - a pickup PIN exists only from ready_for_pickup on
//   - status moves only along the transition table of Status
type Order struct {
	id          kernel.UUID
	listingID   kernel.UUID
	lockerID    kernel.UUID
	buyerID     kernel.UUID
	sellerID    kernel.UUID
	itemPrice   kernel.Money
	deliveryFee kernel.Money
	status      Status

	compartmentNumber *int
	pickupPin         *Pin

	reservedAt        time.Time
	paymentDeadline   time.Time
	paidAt            *time.Time
	pickupScheduledAt *time.Time
	riderPickedUpAt   *time.Time
	deliveredAt       *time.Time
	pickedUpAt        *time.Time
	expiresAt         *time.Time
	cancelReason      string

	events []StatusChanged

	isConstructed bool
}

// NewOrderParams groups what a buyer's purchase request resolves to.
type NewOrderParams struct {
	ID                kernel.UUID
	ListingID         kernel.UUID
	LockerID          kernel.UUID
	BuyerID           kernel.UUID
	SellerID          kernel.UUID
	ItemPrice         kernel.Money
	DeliveryFee       kernel.Money
	CompartmentNumber int
	Now               time.Time
	PaymentWindow     time.Duration
}

// NewOrder creates an order in pending_payment holding the given compartment.
// The payment deadline is Now + PaymentWindow (30 minutes when zero).
func NewOrder(p NewOrderParams) (*Order, error) {
	if err := errors.Join(
		p.ID.Validate(),
		p.ListingID.Validate(),
		p.LockerID.Validate(),
		p.BuyerID.Validate(),
		p.SellerID.Validate(),
		p.ItemPrice.Validate(),
		p.DeliveryFee.Validate(),
	); err != nil {
		return nil, err
	}
	if p.BuyerID.IsEqual(p.SellerID) {
		return nil, errs.NewStateConflictError(MsgSelfPurchase)
	}
	if p.CompartmentNumber < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"compartmentNumber", fmt.Errorf("%d is not a compartment", p.CompartmentNumber))
	}
	if p.Now.IsZero() {
		return nil, errs.NewValueIsRequiredError("now")
	}

	window := p.PaymentWindow
	if window <= 0 {
		window = DefaultPaymentWindow
	}
	now := p.Now.UTC()
	compartment := p.CompartmentNumber

	o := &Order{
		id:                p.ID,
		listingID:         p.ListingID,
		lockerID:          p.LockerID,
		buyerID:           p.BuyerID,
		sellerID:          p.SellerID,
		itemPrice:         p.ItemPrice,
		deliveryFee:       p.DeliveryFee,
		status:            PendingPayment,
		compartmentNumber: &compartment,
		reservedAt:        now,
		paymentDeadline:   now.Add(window),
		isConstructed:     true,
	}
	o.record(Unknown, PendingPayment, "", now)
	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                { return o.id }
func (o *Order) ListingID() kernel.UUID         { return o.listingID }
func (o *Order) LockerID() kernel.UUID          { return o.lockerID }
func (o *Order) BuyerID() kernel.UUID           { return o.buyerID }
func (o *Order) SellerID() kernel.UUID          { return o.sellerID }
func (o *Order) ItemPrice() kernel.Money        { return o.itemPrice }
func (o *Order) DeliveryFee() kernel.Money      { return o.deliveryFee }
func (o *Order) TotalPrice() kernel.Money       { return o.itemPrice.Add(o.deliveryFee) }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) CompartmentNumber() *int        { return o.compartmentNumber }
func (o *Order) PickupPin() *Pin                { return o.pickupPin }
func (o *Order) ReservedAt() time.Time          { return o.reservedAt }
func (o *Order) PaymentDeadline() time.Time     { return o.paymentDeadline }
func (o *Order) PaidAt() *time.Time             { return o.paidAt }
func (o *Order) PickupScheduledAt() *time.Time  { return o.pickupScheduledAt }
func (o *Order) RiderPickedUpAt() *time.Time    { return o.riderPickedUpAt }
func (o *Order) DeliveredAt() *time.Time        { return o.deliveredAt }
func (o *Order) PickedUpAt() *time.Time         { return o.pickedUpAt }
func (o *Order) ExpiresAt() *time.Time          { return o.expiresAt }
func (o *Order) CancelReason() string           { return o.cancelReason }

func (o *Order) IsBuyer(actor kernel.UUID) bool  { return o.buyerID.IsEqual(actor) }
func (o *Order) IsSeller(actor kernel.UUID) bool { return o.sellerID.IsEqual(actor) }

// IsParty reports whether actor may see the order at all.
func (o *Order) IsParty(actor kernel.UUID) bool {
	return o.IsBuyer(actor) || o.IsSeller(actor)
}

// Pay records the buyer's successful payment.
func (o *Order) Pay(now time.Time) error {
	if err := o.transition(Paid, MsgNotAwaitingPayment, "", now); err != nil {
		return err
	}
	paidAt := now.UTC()
	o.paidAt = &paidAt
	return nil
}

// SchedulePickup records when the rider will collect the item from the seller.
func (o *Order) SchedulePickup(pickupTime time.Time, now time.Time) error {
	if pickupTime.IsZero() {
		return errs.NewValueIsRequiredError("pickupTime")
	}
	if err := o.transition(PickupScheduled, MsgNotPaid, "", now); err != nil {
		return err
	}
	at := pickupTime.UTC()
	o.pickupScheduledAt = &at
	return nil
}

// ConfirmRiderPickup records that the rider took the item from the seller.
func (o *Order) ConfirmRiderPickup(now time.Time) error {
	if err := o.transition(InTransit, MsgNotReadyForRider, "", now); err != nil {
		return err
	}
	at := now.UTC()
	o.riderPickedUpAt = &at
	return nil
}

// MarkReadyForPickup stores the item's PIN once it sits in the compartment. The buyer
// then has window (24 hours when zero) to collect.
func (o *Order) MarkReadyForPickup(pin Pin, now time.Time, window time.Duration) error {
	if err := pin.Validate(); err != nil {
		return err
	}
	if window <= 0 {
		window = DefaultPickupWindow
	}
	if err := o.transition(ReadyForPickup, MsgNotInTransit, "", now); err != nil {
		return err
	}
	at := now.UTC()
	expires := at.Add(window)
	o.pickupPin = &pin
	o.deliveredAt = &at
	o.expiresAt = &expires
	return nil
}

// VerifyPin completes the order when candidate equals the stored PIN. On mismatch the
// order is left untouched. It returns the compartment that became free.
func (o *Order) VerifyPin(candidate Pin, now time.Time) (int, error) {
	if err := candidate.Validate(); err != nil {
		return 0, err
	}
	if !o.status.CanTransitionTo(Collected) {
		return 0, errs.NewStateConflictError(MsgNotReadyForPickup)
	}
	if o.pickupPin == nil || !o.pickupPin.Matches(candidate) {
		return 0, errs.NewStateConflictError(MsgInvalidPin)
	}
	if err := o.transition(Collected, MsgNotReadyForPickup, "", now); err != nil {
		return 0, err
	}
	at := now.UTC()
	o.pickedUpAt = &at
	return o.releaseCompartment(), nil
}

// Cancel ends the order on behalf of the buyer or seller. It returns the compartment
// that became free.
func (o *Order) Cancel(reason string, now time.Time) (int, error) {
	if reason == "" {
		return 0, errs.NewValueIsRequiredError("reason")
	}
	if err := o.transition(Cancelled, cancelConflictMessage(o.status), reason, now); err != nil {
		return 0, err
	}
	o.cancelReason = reason
	return o.releaseCompartment(), nil
}

// ExpireReservation expires an order whose payment deadline is before now.
func (o *Order) ExpireReservation(now time.Time) (int, error) {
	if o.status != PendingPayment {
		return 0, errs.NewStateConflictError(MsgNotAwaitingPayment)
	}
	if !o.paymentDeadline.Before(now) {
		return 0, errs.NewStateConflictError(MsgPaymentDeadlineNotYet)
	}
	if err := o.transition(Expired, MsgNotAwaitingPayment, ReasonPaymentDeadline, now); err != nil {
		return 0, err
	}
	o.cancelReason = ReasonPaymentDeadline
	at := now.UTC()
	o.expiresAt = &at
	return o.releaseCompartment(), nil
}

// ExpireUnclaimed expires a ready_for_pickup order whose pickup window is over.
func (o *Order) ExpireUnclaimed(now time.Time) (int, error) {
	if o.status != ReadyForPickup {
		return 0, errs.NewStateConflictError(MsgNotReadyForPickup)
	}
	if o.expiresAt == nil || !o.expiresAt.Before(now) {
		return 0, errs.NewStateConflictError(MsgPickupWindowNotElapsed)
	}
	if err := o.transition(Expired, MsgNotReadyForPickup, ReasonPickupWindowElapsed, now); err != nil {
		return 0, err
	}
	o.cancelReason = ReasonPickupWindowElapsed
	return o.releaseCompartment(), nil
}

// ClearStaleCompartment drops the compartment number of a terminal order that still
// carries one, which only happens when a release was interrupted.
func (o *Order) ClearStaleCompartment() (int, bool) {
	if !o.status.IsTerminal() || o.compartmentNumber == nil {
		return 0, false
	}
	return o.releaseCompartment(), true
}

// DomainEvents returns the transitions recorded since the last ClearDomainEvents.
func (o *Order) DomainEvents() []StatusChanged {
	return o.events
}

func (o *Order) ClearDomainEvents() {
	o.events = nil
}

func (o *Order) transition(next Status, message string, reason string, now time.Time) error {
	from := o.status
	newStatus, err := from.transitionTo(next, message)
	if err != nil {
		return err
	}
	o.status = newStatus
	o.record(from, newStatus, reason, now)
	return nil
}

func (o *Order) record(from, to Status, reason string, now time.Time) {
	o.events = append(o.events, StatusChanged{
		OrderID:    o.id,
		ListingID:  o.listingID,
		LockerID:   o.lockerID,
		BuyerID:    o.buyerID,
		SellerID:   o.sellerID,
		From:       from,
		To:         to,
		Reason:     reason,
		OccurredAt: now.UTC(),
	})
}

func (o *Order) releaseCompartment() int {
	if o.compartmentNumber == nil {
		return 0
	}
	n := *o.compartmentNumber
	o.compartmentNumber = nil
	return n
}

func cancelConflictMessage(s Status) string {
	switch s {
	case Collected:
		return MsgCannotCancelCompleted
	case Cancelled:
		return MsgAlreadyCancelled
	case Expired:
		return MsgAlreadyExpired
	default:
		return MsgNoLongerCancellable
	}
}
