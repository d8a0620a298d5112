// Package lockerrepo persists lockers and implements compartment allocation as
// conditional updates on the locker row.
package lockerrepo

import (
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/locker"

	"github.com/google/uuid"
)

type LockerDTO struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                  string    `gorm:"type:varchar(255);not null"`
	Address               string    `gorm:"type:text"`
	Latitude              float64   `gorm:"not null"`
	Longitude             float64   `gorm:"not null"`
	TotalCompartments     int       `gorm:"not null;check:chk_lockers_total,total_compartments >= 0"`
	AvailableCompartments int       `gorm:"not null;check:chk_lockers_available,available_compartments >= 0 AND available_compartments <= total_compartments"`
	Status                string    `gorm:"type:varchar(16);not null;index"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (LockerDTO) TableName() string {
	return "lockers"
}

func fromDomain(l *locker.Locker) LockerDTO {
	return LockerDTO{
		ID:                    l.ID().Bytes(),
		Name:                  l.Name(),
		Address:               l.Address(),
		Latitude:              l.Coordinates().Latitude(),
		Longitude:             l.Coordinates().Longitude(),
		TotalCompartments:     l.TotalCompartments(),
		AvailableCompartments: l.AvailableCompartments(),
		Status:                l.Status().String(),
	}
}

func toDomain(dto LockerDTO) (*locker.Locker, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	coordinates, err := kernel.NewCoordinates(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}
	status, err := locker.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	return locker.RestoreLocker(
		id,
		dto.Name,
		dto.Address,
		coordinates,
		dto.TotalCompartments,
		dto.AvailableCompartments,
		status,
	)
}
