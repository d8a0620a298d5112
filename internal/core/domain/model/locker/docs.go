// Package locker models EcoLocker pickup stations and the accounting of their
// compartments.
//
// A Locker owns a fixed number of compartments. Every non-terminal order borrows
// exactly one of them; the counter of available compartments therefore moves only
// through paired Allocate/Release calls and always satisfies
// 0 <= available <= total.
//
// The postgres adapter performs the same accounting as a single conditional UPDATE so
// that concurrent allocations never double-book; the methods on the aggregate are used
// by the reconciliation sweep and keep the invariant checkable in memory.
package locker
