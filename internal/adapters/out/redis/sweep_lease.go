// Package redis holds the sweep lease that keeps one replica sweeping at a time.
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ecolocker:sweep:"

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type SweepLease struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewSweepLease(client redis.UniversalClient, logger *slog.Logger) *SweepLease {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SweepLease{client: client, logger: logger}
}

func (l *SweepLease) TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := keyPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}

	release := func() {
		// The sweep's context may already be cancelled at this point.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if relErr := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); relErr != nil {
			l.logger.Warn("releasing sweep lease failed", slog.String("lease", name), slog.Any("error", relErr))
		}
	}
	return release, true, nil
}

// NoopLease always grants the lease. Used when Redis is not configured.
type NoopLease struct{}

func (NoopLease) TryAcquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

// New returns a client for addr.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
