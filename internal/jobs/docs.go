// Package jobs runs the periodic sweeps of the order engine.
//
// Each sweep owns a github.com/robfig/cron/v3 scheduler:
//
//  1. ReservationTimeout - cancels pending_payment orders past their payment deadline (@every 1m)
//  2. PickupExpiry - expires ready_for_pickup orders whose PIN window closed (@every 1h)
//  3. CompartmentReconcile - re-derives locker counters from live orders (@every 15m)
//
// A startup pass re-requests delivery for paid orders that were never picked up.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(handlers, schedules, lease, logger)
//
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Sweeps log failures and never stop the scheduler. A sweep is skipped when the
// previous run is still going or another replica holds its lease.
package jobs
