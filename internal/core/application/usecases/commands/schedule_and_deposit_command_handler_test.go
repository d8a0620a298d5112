package commands_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/domain/services"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSchedulePickupCommandHandler_Handle(t *testing.T) {
	t.Run("seller schedules a paid order", func(t *testing.T) {
		f := newFixture(t, 1)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.Paid)
		pickupTime := f.clock.Now().Add(3 * time.Hour)

		h := commands.NewSchedulePickupCommandHandler(f.store.orderFactory(), f.clock)
		cmd, err := commands.NewSchedulePickupCommand(created.ID(), f.seller, pickupTime)
		require.NoError(t, err)

		o, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.PickupScheduled, o.Status())
		stored := f.store.order(t, created.ID())
		assert.Equal(t, order.PickupScheduled, stored.Status())
		require.NotNil(t, stored.PickupScheduledAt())
		assert.Equal(t, pickupTime, *stored.PickupScheduledAt())
	})

	t.Run("unpaid order is a conflict", func(t *testing.T) {
		f := newFixture(t, 1)
		created := f.createOrder(t, f.listing.ID())

		h := commands.NewSchedulePickupCommandHandler(f.store.orderFactory(), f.clock)
		cmd, _ := commands.NewSchedulePickupCommand(created.ID(), f.seller, f.clock.Now().Add(time.Hour))

		_, err := h.Handle(t.Context(), cmd)

		var conflict *errs.StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, order.MsgNotPaid, conflict.Message)
		assert.Equal(t, order.PendingPayment, f.store.order(t, created.ID()).Status())
	})

	t.Run("buyer cannot schedule", func(t *testing.T) {
		f := newFixture(t, 1)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.Paid)

		h := commands.NewSchedulePickupCommandHandler(f.store.orderFactory(), f.clock)
		cmd, _ := commands.NewSchedulePickupCommand(created.ID(), f.buyer, f.clock.Now().Add(time.Hour))

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("missing pickup time is rejected up front", func(t *testing.T) {
		_, err := commands.NewSchedulePickupCommand(kernel.NewUUID(), kernel.NewUUID(), time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestMarkReadyForPickupCommandHandler_Handle(t *testing.T) {
	pins := func() services.PinGenerator {
		return services.NewPinGeneratorFromReader(bytes.NewReader(bytes.Repeat([]byte{0x5a}, 64)))
	}

	t.Run("deposit issues a pin and tells the buyer", func(t *testing.T) {
		f := newFixture(t, 1)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.InTransit)

		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Kind == ports.NotificationPickupReady &&
				len(n.Recipients) == 1 && n.Recipients[0].IsEqual(f.buyer)
		})).Return(nil).Once()

		h := commands.NewMarkReadyForPickupCommandHandler(f.store.orderFactory(), f.clock, pins(), notifier, f.settings, nil)
		cmd, err := commands.NewMarkReadyForPickupCommand(created.ID())
		require.NoError(t, err)

		o, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.ReadyForPickup, o.Status())
		require.NotNil(t, o.PickupPin())
		assert.Len(t, o.PickupPin().String(), order.PinLength)
		require.NotNil(t, o.ExpiresAt())
		assert.Equal(t, f.clock.Now().Add(24*time.Hour), *o.ExpiresAt())
		notifier.AssertExpectations(t)
	})

	t.Run("duplicate deposit is a conflict and sends nothing", func(t *testing.T) {
		f := newFixture(t, 1)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.ReadyForPickup)
		notifier := new(MockNotifier)

		h := commands.NewMarkReadyForPickupCommandHandler(f.store.orderFactory(), f.clock, pins(), notifier, f.settings, nil)
		cmd, _ := commands.NewMarkReadyForPickupCommand(created.ID())

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
		assert.Equal(t, "123456", f.store.order(t, created.ID()).PickupPin().String())
	})

	t.Run("notification failure keeps the order ready", func(t *testing.T) {
		f := newFixture(t, 1)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.InTransit)
		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		h := commands.NewMarkReadyForPickupCommandHandler(f.store.orderFactory(), f.clock, pins(), notifier, f.settings, nil)
		cmd, _ := commands.NewMarkReadyForPickupCommand(created.ID())

		_, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.ReadyForPickup, f.store.order(t, created.ID()).Status())
	})
}
