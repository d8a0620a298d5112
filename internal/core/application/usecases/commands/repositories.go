// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// Every order transition follows the same pattern: validate the command, begin a
// transaction, re-read the order under a row lock, apply the transition, persist,
// commit, and only then talk to external collaborators.
package commands

import (
	"context"

	"ecolocker/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// LockerRepoFactory provides access to the compartment allocator within a transaction.
	LockerRepoFactory interface {
		LockerRepository() ports.LockerRepository
	}

	// ListingRepoFactory provides access to listings within a transaction.
	ListingRepoFactory interface {
		ListingRepository() ports.ListingRepository
	}

	// OrderUoW manages transactions for operations that touch only orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW manages transactions across orders, lockers and listings.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//   released, err := o.Cancel(reason, now)
	//   _, err = uow.LockerRepository().ReleaseCompartment(ctx, o.LockerID())
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		LockerRepoFactory
		ListingRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
