// Package postgres implements the unit of work over GORM. Repositories created by a
// unit share its transaction, and the status changes of every order they save are
// published once the transaction commits.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
package postgres

import (
	"context"
	"log/slog"

	"ecolocker/internal/adapters/out/postgres/listingrepo"
	"ecolocker/internal/adapters/out/postgres/lockerrepo"
	"ecolocker/internal/adapters/out/postgres/orderrepo"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/core/ports"

	"gorm.io/gorm"
)

type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// eventSource is an aggregate that records status changes.
type eventSource interface {
	DomainEvents() []order.StatusChanged
	ClearDomainEvents()
}

type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewGormUnitOfWorkFactory creates a factory. A nil publisher drops events.
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher ports.EventPublisher, logger *slog.Logger) *GormUnitOfWorkFactory {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GormUnitOfWorkFactory{db: db, publisher: publisher, logger: logger}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:        f.db,
		publisher: f.publisher,
		logger:    f.logger,
	}
}

// GormUnitOfWork is not safe for concurrent use; create one per operation.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	publisher         ports.EventPublisher
	logger            *slog.Logger
	trackedAggregates []trackedAggregate
}

// Begin is idempotent while a transaction is open.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit persists the transaction and then publishes tracked events. A publish failure
// is logged, never returned: the state change is already durable.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = nil
		return err
	}

	uow.publishTracked(ctx)
	return nil
}

// Rollback after Commit returns gorm.ErrInvalidTransaction, which deferred callers ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = nil
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) LockerRepository() ports.LockerRepository {
	return lockerrepo.NewGormLockerRepository(uow.conn())
}

func (uow *GormUnitOfWork) ListingRepository() ports.ListingRepository {
	return listingrepo.NewGormListingRepository(uow.conn())
}

// TrackAggregate registers an aggregate saved in this unit. Saving the same aggregate
// twice keeps one entry.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	for _, t := range uow.trackedAggregates {
		if t.ID.IsEqual(id) {
			return
		}
	}
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{ID: id, Aggregate: aggregate})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) publishTracked(ctx context.Context) {
	tracked := uow.trackedAggregates
	uow.trackedAggregates = nil

	var events []order.StatusChanged
	for _, t := range tracked {
		source, ok := t.Aggregate.(eventSource)
		if !ok {
			continue
		}
		events = append(events, source.DomainEvents()...)
		source.ClearDomainEvents()
	}

	if len(events) == 0 || uow.publisher == nil {
		return
	}

	if err := uow.publisher.Publish(ctx, events); err != nil {
		uow.logger.WarnContext(ctx, "publishing status changes failed",
			slog.Int("events", len(events)),
			slog.Any("error", err))
	}
}
