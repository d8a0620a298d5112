package postgres

import (
	"context"
	"fmt"
	"strings"

	"ecolocker/internal/adapters/out/postgres/listingrepo"
	"ecolocker/internal/adapters/out/postgres/lockerrepo"
	"ecolocker/internal/adapters/out/postgres/orderrepo"
	"ecolocker/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// Migrate creates the tables and the index that keeps one live order per compartment.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&lockerrepo.LockerDTO{},
		&listingrepo.ListingDTO{},
		&orderrepo.OrderDTO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	terminal := order.StatusNames(order.Status.IsTerminal)
	quoted := make([]string, 0, len(terminal))
	for _, s := range terminal {
		quoted = append(quoted, "'"+s+"'")
	}

	index := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_locker_orders_compartment
		ON locker_orders (locker_id, compartment_number)
		WHERE compartment_number IS NOT NULL AND status NOT IN (%s)`, strings.Join(quoted, ", "))
	if err := db.Exec(index).Error; err != nil {
		return fmt.Errorf("create compartment index: %w", err)
	}

	return nil
}
