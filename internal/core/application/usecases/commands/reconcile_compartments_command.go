package commands

import (
	"errors"

	"ecolocker/internal/pkg/guard"
)

var ErrReconcileCompartmentsCommandIsNotConstructed = errors.New(
	"ReconcileCompartmentsCommand must be created via NewReconcileCompartmentsCommand constructor",
)

// ReconcileCompartmentsCommand triggers the compartment reconciliation sweep.
type ReconcileCompartmentsCommand struct {
	guard guard.ConstructorGuard
}

func NewReconcileCompartmentsCommand() ReconcileCompartmentsCommand {
	return ReconcileCompartmentsCommand{guard: guard.NewConstructorGuard()}
}

func (c ReconcileCompartmentsCommand) Validate() error {
	return c.guard.Validate(ErrReconcileCompartmentsCommandIsNotConstructed)
}
