package commands_test

import (
	"errors"
	"testing"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConfirmRiderPickupCommandHandler_Handle(t *testing.T) {
	t.Run("from paid and from scheduled", func(t *testing.T) {
		for _, from := range []order.Status{order.Paid, order.PickupScheduled} {
			f := newFixture(t, 2)
			created := f.createOrder(t, f.listing.ID())
			f.advance(t, created.ID(), from)

			rewards := new(MockRewardsGateway)
			rewards.On("AwardPoints", mock.Anything, f.seller, created.ID(), 10, "eco_drop_off").Return(10, nil).Once()
			h := commands.NewConfirmRiderPickupCommandHandler(f.store.orderFactory(), f.clock, rewards, f.settings, nil)
			cmd, _ := commands.NewConfirmRiderPickupCommand(created.ID(), f.seller)

			result, err := h.Handle(t.Context(), cmd)

			require.NoError(t, err, from.String())
			assert.Equal(t, order.InTransit, result.Order.Status())
			assert.Equal(t, 10, result.PointsAwarded)
			assert.Equal(t, f.clock.Now(), *result.Order.RiderPickedUpAt())
			rewards.AssertExpectations(t)
		}
	})

	t.Run("rewards outage keeps the transition", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		f.advance(t, created.ID(), order.Paid)
		rewards := new(MockRewardsGateway)
		rewards.On("AwardPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(0, errors.New("circuit open")).Once()
		h := commands.NewConfirmRiderPickupCommandHandler(f.store.orderFactory(), f.clock, rewards, f.settings, nil)
		cmd, _ := commands.NewConfirmRiderPickupCommand(created.ID(), f.seller)

		result, err := h.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Zero(t, result.PointsAwarded)
		assert.Equal(t, order.InTransit, f.store.order(t, created.ID()).Status())
	})

	t.Run("pending order is a conflict and awards nothing", func(t *testing.T) {
		f := newFixture(t, 2)
		created := f.createOrder(t, f.listing.ID())
		rewards := new(MockRewardsGateway)
		h := commands.NewConfirmRiderPickupCommandHandler(f.store.orderFactory(), f.clock, rewards, f.settings, nil)
		cmd, _ := commands.NewConfirmRiderPickupCommand(created.ID(), f.seller)

		_, err := h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		rewards.AssertNotCalled(t, "AwardPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
