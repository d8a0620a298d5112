package lockerrepo

import (
	"context"
	"errors"

	"ecolocker/internal/adapters/out/postgres/pgerrors"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/locker"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// liveStatuses are the order statuses that hold a compartment.
var liveStatuses = order.StatusNames(order.Status.HoldsCompartment)

const allocateSQL = `
UPDATE lockers
   SET available_compartments = available_compartments - 1,
       updated_at = now()
 WHERE id = ? AND status = 'active' AND available_compartments > 0`

const lowestFreeSQL = `
SELECT n
  FROM lockers l, generate_series(1, l.total_compartments) AS n
 WHERE l.id = ?
   AND n NOT IN (
       SELECT o.compartment_number
         FROM locker_orders o
        WHERE o.locker_id = l.id
          AND o.compartment_number IS NOT NULL
          AND o.status = ANY(?))
 ORDER BY n
 LIMIT 1`

const releaseSQL = `
UPDATE lockers
   SET available_compartments = available_compartments + 1,
       updated_at = now()
 WHERE id = ? AND available_compartments < total_compartments`

type GormLockerRepository struct {
	db *gorm.DB
}

func NewGormLockerRepository(db *gorm.DB) *GormLockerRepository {
	return &GormLockerRepository{db: db}
}

func (r *GormLockerRepository) Add(ctx context.Context, aggregate *locker.Locker) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	dto := fromDomain(aggregate)
	return pgerrors.Translate(r.db.WithContext(ctx).Create(&dto).Error, "Locker already exists")
}

func (r *GormLockerRepository) Get(ctx context.Context, id kernel.UUID) (*locker.Locker, error) {
	return r.get(ctx, r.db, id)
}

func (r *GormLockerRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*locker.Locker, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormLockerRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*locker.Locker, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto LockerDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("lockerId", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormLockerRepository) GetAll(ctx context.Context) ([]*locker.Locker, error) {
	return r.find(ctx, r.db.Order("name"))
}

func (r *GormLockerRepository) GetAllActive(ctx context.Context) ([]*locker.Locker, error) {
	return r.find(ctx, r.db.Where("status = ?", locker.Active.String()).Order("name"))
}

func (r *GormLockerRepository) find(ctx context.Context, query *gorm.DB) ([]*locker.Locker, error) {
	var dtos []LockerDTO
	if err := query.WithContext(ctx).Find(&dtos).Error; err != nil {
		return nil, err
	}
	lockers := make([]*locker.Locker, 0, len(dtos))
	for _, dto := range dtos {
		l, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		lockers = append(lockers, l)
	}
	return lockers, nil
}

// AllocateCompartment decrements the counter only while it is positive. The update
// also takes the row lock, so choosing the compartment number afterwards cannot race
// another allocation at the same locker.
func (r *GormLockerRepository) AllocateCompartment(ctx context.Context, lockerID kernel.UUID) (int, error) {
	db := r.db.WithContext(ctx)

	result := db.Exec(allocateSQL, lockerID.Bytes())
	if result.Error != nil {
		return 0, pgerrors.Translate(result.Error, locker.MsgNoAvailableCompartments)
	}

	if result.RowsAffected == 0 {
		l, err := r.Get(ctx, lockerID)
		if err != nil {
			return 0, err
		}
		if err = l.CanAllocate(); err != nil {
			return 0, err
		}
		return 0, errs.NewStateConflictError(locker.MsgNoAvailableCompartments)
	}

	var numbers []int
	if err := db.Raw(lowestFreeSQL, lockerID.Bytes(), pq.Array(liveStatuses)).Scan(&numbers).Error; err != nil {
		return 0, err
	}
	if len(numbers) == 0 {
		return 0, errs.NewStateConflictError(locker.MsgNoAvailableCompartments)
	}

	return numbers[0], nil
}

func (r *GormLockerRepository) ReleaseCompartment(ctx context.Context, lockerID kernel.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(releaseSQL, lockerID.Bytes())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormLockerRepository) SetAvailable(ctx context.Context, lockerID kernel.UUID, available int) error {
	result := r.db.WithContext(ctx).
		Model(&LockerDTO{}).
		Where("id = ?", lockerID.Bytes()).
		Update("available_compartments", available)
	if result.Error != nil {
		return pgerrors.Translate(result.Error, "Available compartments out of range")
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("lockerId", lockerID.String())
	}
	return nil
}
