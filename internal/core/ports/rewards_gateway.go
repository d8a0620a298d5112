package ports

import (
	"context"

	"ecolocker/internal/core/domain/model/kernel"
)

// RewardsGateway awards eco points for a completed hand-off. It returns the number of
// points actually granted, which may be lower than requested.
type RewardsGateway interface {
	AwardPoints(ctx context.Context, userID kernel.UUID, orderID kernel.UUID, points int, reason string) (int, error)
}
