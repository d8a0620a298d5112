package commands

import (
	"context"

	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
)

// CreateOrderCommandHandler reserves a listing for a buyer and takes one compartment
// at the chosen locker, all in one transaction.
//
// Checks run in this order: listing exists, listing is active, buyer is not the
// seller, locker exists, locker is active, a compartment is free.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	settings   Settings
}

func NewCreateOrderCommandHandler(uowFactory UoWFactory, clock ports.Clock, settings Settings) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		settings:   settings.withDefaults(),
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	listingRepo := uow.ListingRepository()
	lockerRepo := uow.LockerRepository()

	l, err := listingRepo.GetForUpdate(ctx, cmd.ListingID())
	if err != nil {
		return nil, err
	}
	if err = l.Reserve(cmd.BuyerID()); err != nil {
		return nil, err
	}

	lk, err := lockerRepo.Get(ctx, cmd.LockerID())
	if err != nil {
		return nil, err
	}
	if err = lk.CanAllocate(); err != nil {
		return nil, err
	}

	compartment, err := lockerRepo.AllocateCompartment(ctx, lk.ID())
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(order.NewOrderParams{
		ID:                cmd.OrderID(),
		ListingID:         l.ID(),
		LockerID:          lk.ID(),
		BuyerID:           cmd.BuyerID(),
		SellerID:          l.SellerID(),
		ItemPrice:         l.Price(),
		DeliveryFee:       h.settings.DeliveryFee,
		CompartmentNumber: compartment,
		Now:               h.clock.Now(),
		PaymentWindow:     h.settings.PaymentWindow,
	})
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}
	if err = listingRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
