package queries

import (
	"context"
	"errors"

	"ecolocker/internal/core/domain/model/locker"
	"ecolocker/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetActiveLockersQueryIsNotConstructed = errors.New(
	"GetActiveLockersQuery must be created via NewGetActiveLockersQuery constructor",
)

type GetActiveLockersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetActiveLockersQuery() GetActiveLockersQuery {
	return GetActiveLockersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetActiveLockersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveLockersQueryIsNotConstructed)
}

type GetActiveLockersQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveLockersQueryHandler(db *gorm.DB) GetActiveLockersQueryHandler {
	return GetActiveLockersQueryHandler{db: db}
}

// Handle returns active lockers sorted by name.
func (h GetActiveLockersQueryHandler) Handle(ctx context.Context, query GetActiveLockersQuery) ([]LockerView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	lockers, err := activeLockers(ctx, h.db)
	if err != nil {
		return nil, err
	}

	views := make([]LockerView, 0, len(lockers))
	for _, l := range lockers {
		views = append(views, NewLockerView(l))
	}
	return views, nil
}

func activeLockers(ctx context.Context, db *gorm.DB) ([]*locker.Locker, error) {
	var rows []lockerRow
	err := db.WithContext(ctx).Raw(`
		SELECT `+lockerColumns+`
		FROM lockers
		WHERE status = ?
		ORDER BY name
	`, locker.Active.String()).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lockers := make([]*locker.Locker, 0, len(rows))
	for _, r := range rows {
		l, convErr := r.locker()
		if convErr != nil {
			return nil, convErr
		}
		lockers = append(lockers, l)
	}
	return lockers, nil
}
