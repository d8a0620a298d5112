package commands_test

import (
	"testing"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/listing"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelOrderCommandHandler_Handle(t *testing.T) {
	t.Run("buyer cancels and seller is told", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Kind == ports.NotificationOrderCancelled &&
				len(n.Recipients) == 1 && n.Recipients[0] == f.seller
		})).Return(nil).Once()
		h := commands.NewCancelOrderCommandHandler(f.store, f.clock, notifier, nil)
		cmd, _ := commands.NewCancelOrderCommand(created.ID(), f.buyer, "found it cheaper")

		o, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, "found it cheaper", o.CancelReason())
		assert.Nil(t, o.CompartmentNumber())
		assert.Equal(t, 2, f.store.locker(f.locker.ID()).AvailableCompartments())
		stored := f.store.listing(f.listing.ID())
		assert.Equal(t, listing.Active, stored.Status())
		assert.Nil(t, stored.BuyerID())
		notifier.AssertExpectations(t)
	})

	t.Run("seller cancels a scheduled order", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.PickupScheduled)
		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()
		h := commands.NewCancelOrderCommandHandler(f.store, f.clock, notifier, nil)
		cmd, _ := commands.NewCancelOrderCommand(created.ID(), f.seller, "item damaged")

		o, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, o.Status())
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		h := commands.NewCancelOrderCommandHandler(f.store, f.clock, new(MockNotifier), nil)
		cmd, _ := commands.NewCancelOrderCommand(created.ID(), kernel.NewUUID(), "nope")

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("cancelling twice never double releases", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
		h := commands.NewCancelOrderCommandHandler(f.store, f.clock, notifier, nil)
		cmd, _ := commands.NewCancelOrderCommand(created.ID(), f.buyer, "first")
		_, err := h.Handle(t.Context(), cmd)
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Contains(t, err.Error(), order.MsgAlreadyCancelled)
		assert.Equal(t, 2, f.store.locker(f.locker.ID()).AvailableCompartments())
	})

	t.Run("collected order cannot be cancelled", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.ReadyForPickup)
		verify := commands.NewVerifyPinCommandHandler(f.store, f.clock, nil)
		vcmd, _ := commands.NewVerifyPinCommand(created.ID(), f.buyer, "123456")
		_, err := verify.Handle(t.Context(), vcmd)
		require.NoError(t, err)

		h := commands.NewCancelOrderCommandHandler(f.store, f.clock, new(MockNotifier), nil)
		cmd, _ := commands.NewCancelOrderCommand(created.ID(), f.buyer, "too late")
		_, err = h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Contains(t, err.Error(), order.MsgCannotCancelCompleted)
		assert.Equal(t, 2, f.store.locker(f.locker.ID()).AvailableCompartments())
		assert.Equal(t, listing.Sold, f.store.listing(f.listing.ID()).Status())
	})

	t.Run("in transit order can no longer be cancelled", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.InTransit)
		h := commands.NewCancelOrderCommandHandler(f.store, f.clock, new(MockNotifier), nil)
		cmd, _ := commands.NewCancelOrderCommand(created.ID(), f.buyer, "changed mind")

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Contains(t, err.Error(), order.MsgNoLongerCancellable)
	})
}
