package persistence

import (
	"context"
	"fmt"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/persistence/internal"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/sql"
)

func NewDriverRepository(orm sql.ORM) (*SimpleDriverRepository, error) {
	err := orm.AutoMigrate(&internal.RegisteredDriver{})
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SimpleDriverRepository{
		orm: orm,
	}, nil
}

var _ usecases.DriverRepository = (*SimpleDriverRepository)(nil)

type SimpleDriverRepository struct {
	orm sql.ORM
}

func (s *SimpleDriverRepository) RegisteredDrivers(ctx context.Context, device domain.Device) ([]domain.DriverID, error) {
	var entities []internal.RegisteredDriver
	err := s.orm.WithContext(ctx).
		Where("owner_id = ?", int64(device.DriverOwner())).
		Order("driver_id").
		Find(&entities).
		Error()
	if err != nil {
		return nil, fmt.Errorf("database query: %w", err)
	}

	drivers := make([]domain.DriverID, len(entities))
	for i, entity := range entities {
		drivers[i] = domain.DriverID(entity.DriverID)
	}
	return drivers, nil
}

func (s *SimpleDriverRepository) ReplaceDrivers(ctx context.Context, owner domain.OwnerID, drivers []domain.DriverID) error {
	return s.orm.WithContext(ctx).Transaction(func(tx sql.ORM) error {
		err := tx.Where("owner_id = ?", int64(owner)).Delete(&internal.RegisteredDriver{}).Error()
		if err != nil {
			return fmt.Errorf("deleting drivers: %w", err)
		}

		if len(drivers) == 0 {
			return nil
		}

		entities := make([]internal.RegisteredDriver, len(drivers))
		for i, driver := range drivers {
			entities[i] = internal.RegisteredDriver{OwnerID: int64(owner), DriverID: int64(driver)}
		}
		if err := tx.Create(&entities).Error(); err != nil {
			return fmt.Errorf("creating drivers: %w", err)
		}
		return nil
	})
}
