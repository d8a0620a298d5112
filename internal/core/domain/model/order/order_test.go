package order_test

import (
	"testing"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reservedAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func validParams() order.NewOrderParams {
	return order.NewOrderParams{
		ID:                kernel.NewUUID(),
		ListingID:         kernel.NewUUID(),
		LockerID:          kernel.NewUUID(),
		BuyerID:           kernel.NewUUID(),
		SellerID:          kernel.NewUUID(),
		ItemPrice:         kernel.MustMoney("10.00"),
		DeliveryFee:       kernel.MustMoney("2.00"),
		CompartmentNumber: 4,
		Now:               reservedAt,
	}
}

func mustPin(t *testing.T, digits string) order.Pin {
	t.Helper()
	pin, err := order.NewPin(digits)
	require.NoError(t, err)
	return pin
}

// orderIn drives a fresh order along the happy path until it reaches status.
func orderIn(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	o, err := order.NewOrder(validParams())
	require.NoError(t, err)

	now := reservedAt.Add(time.Minute)
	if status == order.Cancelled {
		_, err = o.Cancel("test", now)
		require.NoError(t, err)
		o.ClearDomainEvents()
		return o
	}
	steps := []struct {
		reached order.Status
		apply   func() error
	}{
		{order.Paid, func() error { return o.Pay(now) }},
		{order.PickupScheduled, func() error { return o.SchedulePickup(now.Add(time.Hour), now) }},
		{order.InTransit, func() error { return o.ConfirmRiderPickup(now) }},
		{order.ReadyForPickup, func() error { return o.MarkReadyForPickup(mustPin(t, "123456"), now, 0) }},
		{order.Collected, func() error { _, err := o.VerifyPin(mustPin(t, "123456"), now); return err }},
	}
	for _, step := range steps {
		if o.Status() == status {
			break
		}
		require.NoError(t, step.apply())
		require.Equal(t, step.reached, o.Status())
	}
	require.Equal(t, status, o.Status())
	o.ClearDomainEvents()
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create pending order", func(t *testing.T) {
		p := validParams()

		o, err := order.NewOrder(p)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(p.ID))
		assert.Equal(t, order.PendingPayment, o.Status())
		require.NotNil(t, o.CompartmentNumber())
		assert.Equal(t, 4, *o.CompartmentNumber())
		assert.Nil(t, o.PickupPin())
		assert.Equal(t, reservedAt, o.ReservedAt())
		assert.Equal(t, reservedAt.Add(30*time.Minute), o.PaymentDeadline())
		assert.Equal(t, "12.00", o.TotalPrice().String())
	})

	t.Run("total is item price plus fee", func(t *testing.T) {
		cases := map[string]string{"0.00": "2.00", "10.00": "12.00", "0.99": "2.99", "1234.56": "1236.56"}
		for item, total := range cases {
			p := validParams()
			p.ItemPrice = kernel.MustMoney(item)

			o, err := order.NewOrder(p)

			require.NoError(t, err)
			assert.Equal(t, total, o.TotalPrice().String())
			assert.True(t, o.TotalPrice().IsEqual(o.ItemPrice().Add(o.DeliveryFee())))
		}
	})

	t.Run("should honour custom payment window", func(t *testing.T) {
		p := validParams()
		p.PaymentWindow = 5 * time.Minute

		o, err := order.NewOrder(p)

		require.NoError(t, err)
		assert.Equal(t, reservedAt.Add(5*time.Minute), o.PaymentDeadline())
	})

	t.Run("should reject self purchase", func(t *testing.T) {
		p := validParams()
		p.SellerID = p.BuyerID

		o, err := order.NewOrder(p)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.MsgSelfPurchase, err.Error())
		assert.Nil(t, o)
	})

	t.Run("should reject missing compartment", func(t *testing.T) {
		p := validParams()
		p.CompartmentNumber = 0

		_, err := order.NewOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should join identity errors", func(t *testing.T) {
		p := validParams()
		p.ID = kernel.UUID{}
		p.ItemPrice = kernel.Money{}

		_, err := order.NewOrder(p)

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, kernel.ErrMoneyIsNotConstructed)
	})

	t.Run("should record creation event", func(t *testing.T) {
		o, err := order.NewOrder(validParams())
		require.NoError(t, err)

		events := o.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, order.Unknown, events[0].From)
		assert.Equal(t, order.PendingPayment, events[0].To)
		assert.True(t, events[0].OrderID.IsEqual(o.ID()))
	})
}

func TestOrder_HappyPath(t *testing.T) {
	o, err := order.NewOrder(validParams())
	require.NoError(t, err)
	o.ClearDomainEvents()

	paidAt := reservedAt.Add(10 * time.Minute)
	require.NoError(t, o.Pay(paidAt))
	assert.Equal(t, paidAt, *o.PaidAt())

	pickupTime := reservedAt.Add(3 * time.Hour)
	require.NoError(t, o.SchedulePickup(pickupTime, paidAt))
	assert.Equal(t, pickupTime, *o.PickupScheduledAt())

	riderAt := pickupTime.Add(5 * time.Minute)
	require.NoError(t, o.ConfirmRiderPickup(riderAt))
	assert.Equal(t, riderAt, *o.RiderPickedUpAt())

	deliveredAt := riderAt.Add(time.Hour)
	require.NoError(t, o.MarkReadyForPickup(mustPin(t, "042042"), deliveredAt, 0))
	assert.Equal(t, deliveredAt, *o.DeliveredAt())
	assert.Equal(t, deliveredAt.Add(24*time.Hour), *o.ExpiresAt())
	require.NotNil(t, o.PickupPin())
	assert.Equal(t, "042042", o.PickupPin().String())

	collectedAt := deliveredAt.Add(2 * time.Hour)
	released, err := o.VerifyPin(mustPin(t, "042042"), collectedAt)
	require.NoError(t, err)
	assert.Equal(t, 4, released)
	assert.Equal(t, order.Collected, o.Status())
	assert.Equal(t, collectedAt, *o.PickedUpAt())
	assert.Nil(t, o.CompartmentNumber())

	var path []order.Status
	for _, e := range o.DomainEvents() {
		path = append(path, e.To)
	}
	assert.Equal(t, []order.Status{
		order.Paid, order.PickupScheduled, order.InTransit, order.ReadyForPickup, order.Collected,
	}, path)
}

func TestOrder_ConfirmRiderPickupFromPaid(t *testing.T) {
	o := orderIn(t, order.Paid)

	require.NoError(t, o.ConfirmRiderPickup(reservedAt.Add(time.Hour)))
	assert.Equal(t, order.InTransit, o.Status())
}

func TestOrder_GuardedTransitionsReturnConflict(t *testing.T) {
	now := reservedAt.Add(time.Hour)
	cases := []struct {
		name    string
		from    order.Status
		apply   func(o *order.Order) error
		message string
	}{
		{"pay twice", order.Paid, func(o *order.Order) error { return o.Pay(now) }, order.MsgNotAwaitingPayment},
		{"schedule unpaid", order.PendingPayment, func(o *order.Order) error { return o.SchedulePickup(now, now) }, order.MsgNotPaid},
		{"schedule twice", order.PickupScheduled, func(o *order.Order) error { return o.SchedulePickup(now, now) }, order.MsgNotPaid},
		{"rider before payment", order.PendingPayment, func(o *order.Order) error { return o.ConfirmRiderPickup(now) }, order.MsgNotReadyForRider},
		{"rider twice", order.InTransit, func(o *order.Order) error { return o.ConfirmRiderPickup(now) }, order.MsgNotReadyForRider},
		{"ready before transit", order.Paid, func(o *order.Order) error {
			return o.MarkReadyForPickup(mustPin(t, "111111"), now, 0)
		}, order.MsgNotInTransit},
		{"verify before ready", order.InTransit, func(o *order.Order) error {
			_, err := o.VerifyPin(mustPin(t, "123456"), now)
			return err
		}, order.MsgNotReadyForPickup},
		{"verify after collected", order.Collected, func(o *order.Order) error {
			_, err := o.VerifyPin(mustPin(t, "123456"), now)
			return err
		}, order.MsgNotReadyForPickup},
		{"cancel collected", order.Collected, func(o *order.Order) error {
			_, err := o.Cancel("changed my mind", now)
			return err
		}, order.MsgCannotCancelCompleted},
		{"cancel in transit", order.InTransit, func(o *order.Order) error {
			_, err := o.Cancel("changed my mind", now)
			return err
		}, order.MsgNoLongerCancellable},
		{"cancel ready", order.ReadyForPickup, func(o *order.Order) error {
			_, err := o.Cancel("changed my mind", now)
			return err
		}, order.MsgNoLongerCancellable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := orderIn(t, tc.from)
			before := o.Snapshot()

			err := tc.apply(o)

			require.ErrorIs(t, err, errs.ErrStateConflict)
			var conflict *errs.StateConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tc.message, conflict.Message)
			assert.Equal(t, before, o.Snapshot())
			assert.Empty(t, o.DomainEvents())
		})
	}
}

func TestOrder_VerifyPin(t *testing.T) {
	now := reservedAt.Add(2 * time.Hour)

	t.Run("wrong pin leaves order untouched", func(t *testing.T) {
		o := orderIn(t, order.ReadyForPickup)
		before := o.Snapshot()

		released, err := o.VerifyPin(mustPin(t, "654321"), now)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.MsgInvalidPin, err.Error())
		assert.Zero(t, released)
		assert.Equal(t, before, o.Snapshot())
	})

	t.Run("malformed pin is a validation error", func(t *testing.T) {
		o := orderIn(t, order.ReadyForPickup)

		_, err := o.VerifyPin(order.Pin{}, now)

		require.ErrorIs(t, err, order.ErrPinIsNotConstructed)
		assert.Equal(t, order.ReadyForPickup, o.Status())
	})
}

func TestOrder_Cancel(t *testing.T) {
	now := reservedAt.Add(5 * time.Minute)

	for _, from := range []order.Status{order.PendingPayment, order.Paid, order.PickupScheduled} {
		t.Run("from "+from.String(), func(t *testing.T) {
			o := orderIn(t, from)

			released, err := o.Cancel("found it cheaper", now)

			require.NoError(t, err)
			assert.Equal(t, 4, released)
			assert.Equal(t, order.Cancelled, o.Status())
			assert.Equal(t, "found it cheaper", o.CancelReason())
			assert.Nil(t, o.CompartmentNumber())
			require.Len(t, o.DomainEvents(), 1)
			assert.Equal(t, "found it cheaper", o.DomainEvents()[0].Reason)
		})
	}

	t.Run("empty reason is rejected", func(t *testing.T) {
		o := orderIn(t, order.PendingPayment)

		_, err := o.Cancel("", now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, order.PendingPayment, o.Status())
	})

	t.Run("second cancel never releases twice", func(t *testing.T) {
		o := orderIn(t, order.Paid)
		_, err := o.Cancel("first", now)
		require.NoError(t, err)

		released, err := o.Cancel("second", now)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Contains(t, err.Error(), order.MsgAlreadyCancelled)
		assert.Zero(t, released)
		assert.Equal(t, "first", o.CancelReason())
	})
}

func TestOrder_ExpireReservation(t *testing.T) {
	t.Run("expires once the deadline passed", func(t *testing.T) {
		o := orderIn(t, order.PendingPayment)
		now := o.PaymentDeadline().Add(time.Second)

		released, err := o.ExpireReservation(now)

		require.NoError(t, err)
		assert.Equal(t, 4, released)
		assert.Equal(t, order.Expired, o.Status())
		assert.Equal(t, order.ReasonPaymentDeadline, o.CancelReason())
		assert.Nil(t, o.CompartmentNumber())
	})

	t.Run("deadline not yet passed", func(t *testing.T) {
		o := orderIn(t, order.PendingPayment)

		_, err := o.ExpireReservation(o.PaymentDeadline())

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.MsgPaymentDeadlineNotYet, err.Error())
		assert.Equal(t, order.PendingPayment, o.Status())
	})

	t.Run("paid in the meantime", func(t *testing.T) {
		o := orderIn(t, order.Paid)

		_, err := o.ExpireReservation(o.PaymentDeadline().Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.Paid, o.Status())
	})
}

func TestOrder_ExpireUnclaimed(t *testing.T) {
	t.Run("expires after the pickup window", func(t *testing.T) {
		o := orderIn(t, order.ReadyForPickup)

		released, err := o.ExpireUnclaimed(o.ExpiresAt().Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, 4, released)
		assert.Equal(t, order.Expired, o.Status())
		assert.Equal(t, order.ReasonPickupWindowElapsed, o.CancelReason())
	})

	t.Run("window still open", func(t *testing.T) {
		o := orderIn(t, order.ReadyForPickup)

		_, err := o.ExpireUnclaimed(o.ExpiresAt().Add(-time.Minute))

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.MsgPickupWindowNotElapsed, err.Error())
	})

	t.Run("already collected", func(t *testing.T) {
		o := orderIn(t, order.Collected)

		_, err := o.ExpireUnclaimed(reservedAt.Add(72 * time.Hour))

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.Collected, o.Status())
	})
}

func TestOrder_Parties(t *testing.T) {
	o := orderIn(t, order.PendingPayment)
	stranger := kernel.NewUUID()

	assert.True(t, o.IsBuyer(o.BuyerID()))
	assert.False(t, o.IsSeller(o.BuyerID()))
	assert.True(t, o.IsSeller(o.SellerID()))
	assert.True(t, o.IsParty(o.SellerID()))
	assert.False(t, o.IsParty(stranger))
}

func TestRestore(t *testing.T) {
	t.Run("round trip keeps state", func(t *testing.T) {
		o := orderIn(t, order.ReadyForPickup)

		restored, err := order.Restore(o.Snapshot())

		require.NoError(t, err)
		assert.Equal(t, o.Snapshot(), restored.Snapshot())
		assert.Empty(t, restored.DomainEvents())
	})

	t.Run("active order without compartment is rejected", func(t *testing.T) {
		s := orderIn(t, order.Paid).Snapshot()
		s.CompartmentNumber = nil

		_, err := order.Restore(s)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("ready order without pin is rejected", func(t *testing.T) {
		s := orderIn(t, order.ReadyForPickup).Snapshot()
		s.PickupPin = nil

		_, err := order.Restore(s)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("terminal order with stale compartment can be repaired", func(t *testing.T) {
		s := orderIn(t, order.Cancelled).Snapshot()
		n := 7
		s.CompartmentNumber = &n

		o, err := order.Restore(s)
		require.NoError(t, err)

		released, ok := o.ClearStaleCompartment()
		assert.True(t, ok)
		assert.Equal(t, 7, released)
		assert.Nil(t, o.CompartmentNumber())

		_, ok = o.ClearStaleCompartment()
		assert.False(t, ok)
	})
}
