package commands

import (
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
)

// Settings are the operational knobs shared by the order handlers.
type Settings struct {
	DeliveryFee      kernel.Money
	PaymentWindow    time.Duration
	PickupWindow     time.Duration
	DropOffPoints    int
	RequeueThreshold time.Duration
	RequeueRetries   uint64
	SweepBatchSize   int
}

// DefaultSettings mirrors the production defaults.
func DefaultSettings() Settings {
	return Settings{
		DeliveryFee:      kernel.MustMoney("2.00"),
		PaymentWindow:    order.DefaultPaymentWindow,
		PickupWindow:     order.DefaultPickupWindow,
		DropOffPoints:    10,
		RequeueThreshold: 2 * time.Hour,
		RequeueRetries:   3,
		SweepBatchSize:   500,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.DeliveryFee.Validate() != nil {
		s.DeliveryFee = d.DeliveryFee
	}
	if s.PaymentWindow <= 0 {
		s.PaymentWindow = d.PaymentWindow
	}
	if s.PickupWindow <= 0 {
		s.PickupWindow = d.PickupWindow
	}
	if s.DropOffPoints < 0 {
		s.DropOffPoints = d.DropOffPoints
	}
	if s.RequeueThreshold <= 0 {
		s.RequeueThreshold = d.RequeueThreshold
	}
	if s.SweepBatchSize <= 0 {
		s.SweepBatchSize = d.SweepBatchSize
	}
	return s
}
