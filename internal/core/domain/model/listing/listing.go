// Package listing holds the slice of a marketplace listing the order engine needs:
// who sells it, for how much, and whether it can still be bought.
//
// Listings themselves are owned by the catalogue service; the engine only flips their
// status in lockstep with the order (active -> reserved -> sold, or back to active).
package listing

import (
	"errors"
	"fmt"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
)

const (
	MsgListingNotAvailable = "Listing is not available"
	MsgSelfPurchase        = "You cannot buy your own listing"
)

var ErrListingIsNotConstructed = errors.New("Listing must be created via RestoreListing")

type Status string

const (
	Active   Status = "active"
	Reserved Status = "reserved"
	Sold     Status = "sold"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Active, Reserved, Sold:
		return Status(s), nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a listing status", s))
	}
}

type Listing struct {
	id       kernel.UUID
	sellerID kernel.UUID
	price    kernel.Money
	status   Status
	buyerID  *kernel.UUID

	isConstructed bool
}

func RestoreListing(
	id kernel.UUID,
	sellerID kernel.UUID,
	price kernel.Money,
	status Status,
	buyerID *kernel.UUID,
) (*Listing, error) {
	if err := errors.Join(id.Validate(), sellerID.Validate(), price.Validate()); err != nil {
		return nil, err
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	return &Listing{
		id:            id,
		sellerID:      sellerID,
		price:         price,
		status:        status,
		buyerID:       buyerID,
		isConstructed: true,
	}, nil
}

func (l *Listing) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrListingIsNotConstructed
	}
	return nil
}

func (l *Listing) ID() kernel.UUID       { return l.id }
func (l *Listing) SellerID() kernel.UUID { return l.sellerID }
func (l *Listing) Price() kernel.Money   { return l.price }
func (l *Listing) Status() Status        { return l.status }
func (l *Listing) BuyerID() *kernel.UUID { return l.buyerID }

// Reserve attaches a buyer. Only active listings can be reserved and sellers cannot
// reserve their own listing.
func (l *Listing) Reserve(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}
	if l.status != Active {
		return errs.NewStateConflictError(MsgListingNotAvailable)
	}
	if l.sellerID.IsEqual(buyerID) {
		return errs.NewStateConflictError(MsgSelfPurchase)
	}
	l.status = Reserved
	l.buyerID = &buyerID
	return nil
}

// Reactivate puts a reserved listing back on the market.
func (l *Listing) Reactivate() {
	if l.status != Reserved {
		return
	}
	l.status = Active
	l.buyerID = nil
}

// MarkSold closes the listing once the buyer collected the item.
func (l *Listing) MarkSold() {
	l.status = Sold
}
