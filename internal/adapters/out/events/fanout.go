// Package events fans committed status changes out to every configured sink.
package events

import (
	"context"
	"errors"
	"fmt"

	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"
	"ecolocker/internal/observability"
)

// Sink is a named EventPublisher.
type Sink struct {
	Name      string
	Publisher ports.EventPublisher
}

type FanOut struct {
	sinks []Sink
}

func NewFanOut(sinks ...Sink) *FanOut {
	return &FanOut{sinks: sinks}
}

// Publish counts the transitions, then hands the batch to every sink. One sink
// failing does not stop the others; all failures are returned joined.
func (f *FanOut) Publish(ctx context.Context, events []order.StatusChanged) error {
	for _, e := range events {
		observability.OrderTransitions.WithLabelValues(e.From.String(), e.To.String()).Inc()
	}

	var errs []error
	for _, s := range f.sinks {
		if err := s.Publisher.Publish(ctx, events); err != nil {
			observability.EventPublishFailures.WithLabelValues(s.Name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
