package persistence

import (
	"context"
	"errors"
	"fmt"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/persistence/internal"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/sql"
)

func NewDeviceRepository(orm sql.ORM) (*SimpleDeviceRepository, error) {
	err := orm.AutoMigrate(&internal.Device{})
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SimpleDeviceRepository{
		orm: orm,
	}, nil
}

var _ usecases.DeviceRepository = (*SimpleDeviceRepository)(nil)

type SimpleDeviceRepository struct {
	orm sql.ORM
}

func (s *SimpleDeviceRepository) Upsert(ctx context.Context, device domain.Device) error {
	value := internal.FromDevice(device)
	err := s.orm.WithContext(ctx).Save(&value).Error()
	if err != nil {
		return fmt.Errorf("saving device: %w", err)
	}
	return nil
}

func (s *SimpleDeviceRepository) Get(ctx context.Context, id domain.DeviceID) (domain.Device, error) {
	var entity internal.Device
	err := s.orm.WithContext(ctx).
		Where("id = ?", int64(id)).
		First(&entity).
		Error()

	if errors.Is(err, sql.ErrRecordNotFound) {
		return domain.Device{}, fmt.Errorf("%w: %s", usecases.ErrDeviceNotFound, id.String())
	}

	if err != nil {
		return domain.Device{}, fmt.Errorf("database query: %w", err)
	}

	return entity.ToDomain(), nil
}

func (s *SimpleDeviceRepository) FindAll(ctx context.Context, pagination usecases.Pagination) ([]domain.Device, int, error) {
	var total int64
	err := s.orm.WithContext(ctx).
		Model(&internal.Device{}).
		Count(&total).
		Error()
	if err != nil {
		return nil, 0, fmt.Errorf("counting devices: %w", err)
	}

	var entities []internal.Device
	query := s.orm.WithContext(ctx).Order("id")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.Offset)
	}
	if err := query.Find(&entities).Error(); err != nil {
		return nil, 0, fmt.Errorf("database query: %w", err)
	}

	devices := make([]domain.Device, len(entities))
	for i, entity := range entities {
		devices[i] = entity.ToDomain()
	}

	return devices, int(total), nil
}

func (s *SimpleDeviceRepository) FindAllIDs(ctx context.Context) ([]domain.DeviceID, error) {
	var entities []internal.Device
	err := s.orm.WithContext(ctx).Order("id").Find(&entities).Error()
	if err != nil {
		return nil, fmt.Errorf("database query: %w", err)
	}

	ids := make([]domain.DeviceID, len(entities))
	for i, entity := range entities {
		ids[i] = domain.DeviceID(entity.ID)
	}
	return ids, nil
}
