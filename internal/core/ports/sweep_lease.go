package ports

import (
	"context"
	"time"
)

// SweepLease lets one replica run a periodic sweep at a time. Sweeps are safe to run
// concurrently; the lease only avoids duplicate work.
type SweepLease interface {
	// TryAcquire returns ok=false when another holder owns name. release must be
	// called when ok is true.
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}
