package commands

import (
	"context"
	"log/slog"

	"ecolocker/internal/core/domain/model/order"
)

// releaseHeld gives back the compartment an order just dropped and, unless the order
// was collected, puts its listing back on the market. Collected orders mark the
// listing sold instead.
func releaseHeld(ctx context.Context, uow UoW, o *order.Order, released int, logger *slog.Logger) error {
	if released > 0 {
		freed, err := uow.LockerRepository().ReleaseCompartment(ctx, o.LockerID())
		if err != nil {
			return err
		}
		if !freed {
			logger.WarnContext(ctx, "locker already at full capacity on release",
				"order_id", o.ID().String(), "locker_id", o.LockerID().String(), "compartment", released)
		}
	}

	listingRepo := uow.ListingRepository()
	l, err := listingRepo.GetForUpdate(ctx, o.ListingID())
	if err != nil {
		return err
	}
	if o.Status() == order.Collected {
		l.MarkSold()
	} else {
		l.Reactivate()
	}
	return listingRepo.Update(ctx, l)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return discardLogger()
	}
	return logger
}
