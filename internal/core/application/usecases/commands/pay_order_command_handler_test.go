package commands_test

import (
	"errors"
	"testing"
	"time"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPayOrderCommandHandler_Handle(t *testing.T) {
	t.Run("buyer pays and dispatch is told", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		f.clock.Advance(5 * time.Minute)

		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Kind == ports.NotificationNeedsDelivery && n.OrderID == created.ID()
		})).Return(nil).Once()

		h := commands.NewPayOrderCommandHandler(f.store, f.clock, notifier, nil)
		cmd, _ := commands.NewPayOrderCommand(created.ID(), f.buyer)

		o, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Paid, o.Status())
		assert.Equal(t, f.clock.Now(), *o.PaidAt())
		assert.Equal(t, order.Paid, f.store.order(t, created.ID()).Status())
		notifier.AssertExpectations(t)
	})

	t.Run("notification failure does not undo payment", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		h := commands.NewPayOrderCommandHandler(f.store, f.clock, notifier, nil)
		cmd, _ := commands.NewPayOrderCommand(created.ID(), f.buyer)

		_, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Paid, f.store.order(t, created.ID()).Status())
	})

	t.Run("seller cannot see the order as payer", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		h := commands.NewPayOrderCommandHandler(f.store, f.clock, new(MockNotifier), nil)
		cmd, _ := commands.NewPayOrderCommand(created.ID(), f.seller)

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("paying twice is a conflict", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.Paid)
		h := commands.NewPayOrderCommandHandler(f.store, f.clock, new(MockNotifier), nil)
		cmd, _ := commands.NewPayOrderCommand(created.ID(), f.buyer)

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		var conflict *errs.StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, order.MsgNotAwaitingPayment, conflict.Message)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t, 2)
		h := commands.NewPayOrderCommandHandler(f.store, f.clock, new(MockNotifier), nil)
		cmd, _ := commands.NewPayOrderCommand(kernel.NewUUID(), f.buyer)

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
