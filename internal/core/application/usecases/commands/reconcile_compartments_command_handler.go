package commands

import (
	"context"
	"log/slog"

	"ecolocker/internal/core/domain/model/kernel"
)

// ReconcileCompartmentsResult reports what the sweep repaired.
type ReconcileCompartmentsResult struct {
	ClearedOrders   int
	AdjustedLockers int
}

// ReconcileCompartmentsCommandHandler repairs compartment state left behind by an
// interrupted release. It first clears compartment numbers still attached to terminal
// orders, then recomputes every locker's available counter from the orders that
// really hold a compartment. The cached counter is never trusted during repair.
type ReconcileCompartmentsCommandHandler struct {
	uowFactory UoWFactory
	logger     *slog.Logger
}

func NewReconcileCompartmentsCommandHandler(uowFactory UoWFactory, logger *slog.Logger) ReconcileCompartmentsCommandHandler {
	return ReconcileCompartmentsCommandHandler{
		uowFactory: uowFactory,
		logger:     loggerOrDiscard(logger).With("component", "compartment_reconciler"),
	}
}

func (h *ReconcileCompartmentsCommandHandler) Handle(
	ctx context.Context,
	cmd ReconcileCompartmentsCommand,
) (ReconcileCompartmentsResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReconcileCompartmentsResult{}, err
	}

	reader := h.uowFactory.Create()
	stale, err := reader.OrderRepository().FindStaleCompartments(ctx)
	if err != nil {
		return ReconcileCompartmentsResult{}, err
	}
	lockers, err := reader.LockerRepository().GetAll(ctx)
	if err != nil {
		return ReconcileCompartmentsResult{}, err
	}

	var result ReconcileCompartmentsResult
	result.ClearedOrders, _ = runSweep(ctx, h.logger, stale, h.clearStale)

	for _, lk := range lockers {
		adjusted, recErr := h.reconcileLocker(ctx, lk.ID())
		if recErr != nil {
			h.logger.ErrorContext(ctx, "locker reconciliation failed", "locker_id", lk.ID().String(), "error", recErr)
			continue
		}
		if adjusted {
			result.AdjustedLockers++
		}
	}

	if result.ClearedOrders > 0 || result.AdjustedLockers > 0 {
		h.logger.WarnContext(ctx, "compartment drift repaired",
			"cleared_orders", result.ClearedOrders, "adjusted_lockers", result.AdjustedLockers)
	}
	return result, nil
}

func (h *ReconcileCompartmentsCommandHandler) clearStale(ctx context.Context, id kernel.UUID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if _, ok := o.ClearStaleCompartment(); !ok {
		return nil
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h *ReconcileCompartmentsCommandHandler) reconcileLocker(ctx context.Context, id kernel.UUID) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	lockerRepo := uow.LockerRepository()
	lk, err := lockerRepo.GetForUpdate(ctx, id)
	if err != nil {
		return false, err
	}
	held, err := uow.OrderRepository().CountHeldCompartments(ctx, id)
	if err != nil {
		return false, err
	}

	before := lk.AvailableCompartments()
	changed, err := lk.Reconcile(held)
	if err != nil || !changed {
		return false, err
	}
	if err = lockerRepo.SetAvailable(ctx, id, lk.AvailableCompartments()); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.logger.InfoContext(ctx, "locker counter corrected",
		"locker_id", id.String(), "from", before, "to", lk.AvailableCompartments(), "held", held)
	return true, nil
}

