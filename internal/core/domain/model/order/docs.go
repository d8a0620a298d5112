// Package order implements the EcoLocker order aggregate and its state machine.
//
// An order reserves one compartment of a locker for one marketplace listing and walks
// the buyer, the seller and a rider through the hand-over:
//
//	pending_payment -> paid -> pickup_scheduled -> in_transit -> ready_for_pickup -> collected
//
// with the side exits cancelled (from pending_payment, paid, pickup_scheduled) and
// expired (from pending_payment on payment timeout, from ready_for_pickup when the
// buyer does not collect in time).
//
// Status owns the transition table; every method on Order that changes the status goes
// through it, so an illegal move (for example paid -> pending_payment) is impossible
// regardless of who triggers it, a request handler or a reconciliation sweep.
// Transitions that end the order's use of the locker clear the compartment number and
// report it so the caller can return it to the allocator.
package order
