package commands_test

import (
	"testing"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/listing"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPinCommandHandler_Handle(t *testing.T) {
	setup := func(t *testing.T) (*fixture, *order.Order, commands.VerifyPinCommandHandler) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.ReadyForPickup)
		return f, created, commands.NewVerifyPinCommandHandler(f.store, f.clock, nil)
	}

	t.Run("correct pin collects and releases", func(t *testing.T) {
		f, created, h := setup(t)
		cmd, _ := commands.NewVerifyPinCommand(created.ID(), f.buyer, "123456")

		o, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Collected, o.Status())
		assert.Nil(t, o.CompartmentNumber())
		assert.Equal(t, 2, f.store.locker(f.locker.ID()).AvailableCompartments())
		assert.Equal(t, listing.Sold, f.store.listing(f.listing.ID()).Status())
	})

	t.Run("wrong pin changes nothing", func(t *testing.T) {
		f, created, h := setup(t)
		cmd, _ := commands.NewVerifyPinCommand(created.ID(), f.buyer, "123457")

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.MsgInvalidPin, err.Error())
		stored := f.store.order(t, created.ID())
		assert.Equal(t, order.ReadyForPickup, stored.Status())
		assert.NotNil(t, stored.CompartmentNumber())
		assert.Equal(t, 1, f.store.locker(f.locker.ID()).AvailableCompartments())
	})

	t.Run("seller cannot verify", func(t *testing.T) {
		f, created, h := setup(t)
		cmd, _ := commands.NewVerifyPinCommand(created.ID(), f.seller, "123456")

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("second verification is a conflict", func(t *testing.T) {
		f, created, h := setup(t)
		cmd, _ := commands.NewVerifyPinCommand(created.ID(), f.buyer, "123456")
		_, err := h.Handle(t.Context(), cmd)
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, 2, f.store.locker(f.locker.ID()).AvailableCompartments())
	})
}
