package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/ports"
)

const (
	ReservationTimeout   = "reservation_timeout"
	PickupExpiry         = "pickup_expiry"
	CompartmentReconcile = "compartment_reconcile"
	StartupRequeue       = "startup_requeue"
)

type (
	ExpireOverdueReservationsHandler interface {
		Handle(ctx context.Context, cmd commands.ExpireOverdueReservationsCommand) (int, error)
	}
	ExpireUnclaimedPickupsHandler interface {
		Handle(ctx context.Context, cmd commands.ExpireUnclaimedPickupsCommand) (int, error)
	}
	ReconcileCompartmentsHandler interface {
		Handle(ctx context.Context, cmd commands.ReconcileCompartmentsCommand) (commands.ReconcileCompartmentsResult, error)
	}
	RequeuePendingDeliveriesHandler interface {
		Handle(ctx context.Context, cmd commands.RequeuePendingDeliveriesCommand) (int, error)
	}
)

// Handlers are the sweep use cases the scheduler drives.
type Handlers struct {
	ExpireReservations ExpireOverdueReservationsHandler
	ExpirePickups      ExpireUnclaimedPickupsHandler
	Reconcile          ReconcileCompartmentsHandler
	Requeue            RequeuePendingDeliveriesHandler
}

// Schedules are cron specs; empty fields fall back to DefaultSchedules.
type Schedules struct {
	ReservationTimeout   string
	PickupExpiry         string
	CompartmentReconcile string
}

func DefaultSchedules() Schedules {
	return Schedules{
		ReservationTimeout:   "@every 1m",
		PickupExpiry:         "@every 1h",
		CompartmentReconcile: "@every 15m",
	}
}

func (s Schedules) withDefaults() Schedules {
	d := DefaultSchedules()
	if s.ReservationTimeout == "" {
		s.ReservationTimeout = d.ReservationTimeout
	}
	if s.PickupExpiry == "" {
		s.PickupExpiry = d.PickupExpiry
	}
	if s.CompartmentReconcile == "" {
		s.CompartmentReconcile = d.CompartmentReconcile
	}
	return s
}

// JobManager owns the sweep jobs and the startup requeue.
type JobManager struct {
	jobs    []*SweepJob
	requeue *SweepJob
	started []*SweepJob
}

func NewJobManager(h Handlers, schedules Schedules, lease ports.SweepLease, logger *slog.Logger) *JobManager {
	schedules = schedules.withDefaults()

	reservations := func(ctx context.Context) (int, error) {
		return h.ExpireReservations.Handle(ctx, commands.NewExpireOverdueReservationsCommand())
	}
	pickups := func(ctx context.Context) (int, error) {
		return h.ExpirePickups.Handle(ctx, commands.NewExpireUnclaimedPickupsCommand())
	}
	reconcile := func(ctx context.Context) (int, error) {
		res, err := h.Reconcile.Handle(ctx, commands.NewReconcileCompartmentsCommand())
		return res.ClearedOrders + res.AdjustedLockers, err
	}
	requeue := func(ctx context.Context) (int, error) {
		return h.Requeue.Handle(ctx, commands.NewRequeuePendingDeliveriesCommand())
	}

	return &JobManager{
		jobs: []*SweepJob{
			newSweepJob(ReservationTimeout, schedules.ReservationTimeout, reservations, lease, logger),
			newSweepJob(PickupExpiry, schedules.PickupExpiry, pickups, lease, logger),
			newSweepJob(CompartmentReconcile, schedules.CompartmentReconcile, reconcile, lease, logger),
		},
		requeue: newSweepJob(StartupRequeue, "", requeue, lease, logger),
	}
}

// StartAll runs the startup requeue once and then starts every sweep.
func (jm *JobManager) StartAll(ctx context.Context) error {
	jm.requeue.tick(ctx)

	for _, job := range jm.jobs {
		if err := job.Start(ctx); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start %s job: %w", job.name, err)
		}
		jm.started = append(jm.started, job)
	}
	return nil
}

// StopAll stops every started sweep and waits for running ones.
func (jm *JobManager) StopAll() {
	for _, job := range jm.started {
		job.Stop()
	}
	jm.started = nil
}
