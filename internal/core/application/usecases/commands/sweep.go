package commands

import (
	"context"
	"errors"
	"log/slog"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
)

// sweepPages fetches due ids a page at a time and runs step over each page. While a
// full page leaves rows behind, the next page is fetched without them, so rows that
// keep failing cannot starve later ones.
func sweepPages(
	ctx context.Context,
	logger *slog.Logger,
	batchSize int,
	find func(ctx context.Context, skip []kernel.UUID) ([]kernel.UUID, error),
	step func(ctx context.Context, id kernel.UUID) error,
) (int, error) {
	var skip []kernel.UUID
	processed := 0
	for {
		ids, err := find(ctx, skip)
		if err != nil {
			return processed, err
		}

		n, left := runSweep(ctx, logger, ids, step)
		processed += n
		if len(ids) < batchSize || len(left) == 0 || ctx.Err() != nil {
			return processed, nil
		}
		skip = append(skip, left...)
	}
}

// runSweep applies step to every id in its own transaction. A failing row is logged
// and skipped. A conflict or a vanished row means a concurrent caller got there first
// and is not an error. It returns the processed count and the ids it left untouched.
func runSweep(
	ctx context.Context,
	logger *slog.Logger,
	ids []kernel.UUID,
	step func(ctx context.Context, id kernel.UUID) error,
) (int, []kernel.UUID) {
	processed := 0
	var left []kernel.UUID
	for i, id := range ids {
		if ctx.Err() != nil {
			logger.WarnContext(ctx, "sweep interrupted", "remaining", len(ids)-i, "error", ctx.Err())
			break
		}

		err := step(ctx, id)
		switch {
		case err == nil:
			processed++
		case errors.Is(err, errs.ErrStateConflict), errors.Is(err, errs.ErrObjectNotFound):
			logger.DebugContext(ctx, "order changed concurrently, skipped", "order_id", id.String(), "reason", err)
			left = append(left, id)
		default:
			logger.ErrorContext(ctx, "sweep row failed", "order_id", id.String(), "error", err)
			left = append(left, id)
		}
	}
	return processed, left
}
