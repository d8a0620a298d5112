package orderrepo

import (
	"context"
	"errors"
	"time"

	"ecolocker/internal/adapters/out/postgres/pgerrors"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker collects saved aggregates so their events can be published after
// the transaction commits.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrors.Translate(err, "Compartment is already taken")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column, so cleared fields such as the compartment number become
// NULL.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerrors.Translate(result.Error, "Compartment is already taken")
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("orderId", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db, id)
}

// GetForUpdate locks the row with SELECT ... FOR UPDATE until the transaction ends.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOrderRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orderId", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) ListByBuyer(ctx context.Context, buyerID kernel.UUID) ([]*order.Order, error) {
	return r.find(ctx, r.db.Where("buyer_id = ?", buyerID.Bytes()).Order("reserved_at DESC"))
}

func (r *GormOrderRepository) ListBySeller(ctx context.Context, sellerID kernel.UUID) ([]*order.Order, error) {
	return r.find(ctx, r.db.Where("seller_id = ?", sellerID.Bytes()).Order("reserved_at DESC"))
}

func (r *GormOrderRepository) FindPaymentOverdue(ctx context.Context, now time.Time, limit int, skip []kernel.UUID) ([]kernel.UUID, error) {
	return r.pluckIDs(ctx, excluding(r.db, skip).
		Where("status = ? AND payment_deadline < ?", order.PendingPayment.String(), now).
		Order("payment_deadline").
		Limit(limit))
}

func (r *GormOrderRepository) FindPickupExpired(ctx context.Context, now time.Time, limit int, skip []kernel.UUID) ([]kernel.UUID, error) {
	return r.pluckIDs(ctx, excluding(r.db, skip).
		Where("status = ? AND expires_at < ?", order.ReadyForPickup.String(), now).
		Order("expires_at").
		Limit(limit))
}

func excluding(db *gorm.DB, skip []kernel.UUID) *gorm.DB {
	if len(skip) == 0 {
		return db
	}
	ids := make([]uuid.UUID, 0, len(skip))
	for _, id := range skip {
		ids = append(ids, id.Bytes())
	}
	return db.Where("id NOT IN ?", ids)
}

func (r *GormOrderRepository) FindAwaitingDelivery(ctx context.Context, olderThan time.Time) ([]*order.Order, error) {
	return r.find(ctx, r.db.
		Where("status = ANY(?) AND paid_at < ?",
			pq.Array([]string{order.Paid.String(), order.PickupScheduled.String()}), olderThan).
		Order("paid_at"))
}

func (r *GormOrderRepository) FindStaleCompartments(ctx context.Context) ([]kernel.UUID, error) {
	return r.pluckIDs(ctx, r.db.
		Where("status = ANY(?) AND compartment_number IS NOT NULL", pq.Array(terminalStatuses())))
}

func (r *GormOrderRepository) CountHeldCompartments(ctx context.Context, lockerID kernel.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("locker_id = ? AND status <> ALL(?)", lockerID.Bytes(), pq.Array(terminalStatuses())).
		Count(&count).Error
	return int(count), err
}

func (r *GormOrderRepository) find(ctx context.Context, query *gorm.DB) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := query.WithContext(ctx).Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) pluckIDs(ctx context.Context, query *gorm.DB) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	if err := query.WithContext(ctx).Model(&OrderDTO{}).Pluck("id", &raw).Error; err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func terminalStatuses() []string {
	return order.StatusNames(order.Status.IsTerminal)
}
