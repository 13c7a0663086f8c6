package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"fleet-sync-server/internal/driver_sync/domain"
)

func NewDeviceService(devices DeviceRepository, drivers DriverRepository) *SimpleDeviceService {
	return &SimpleDeviceService{
		devices: devices,
		drivers: drivers,
	}
}

var _ DeviceService = &SimpleDeviceService{}

type SimpleDeviceService struct {
	devices DeviceRepository
	drivers DriverRepository
}

func (s *SimpleDeviceService) AllDevices(ctx context.Context, pagination Pagination) ([]domain.Device, int, error) {
	devices, total, err := s.devices.FindAll(ctx, pagination)
	if err != nil {
		slog.Error("getting all devices", slog.Any("error", err))
		return nil, 0, err
	}
	return devices, total, nil
}

func (s *SimpleDeviceService) GetDevice(ctx context.Context, id domain.DeviceID) (domain.Device, error) {
	return s.devices.Get(ctx, id)
}

// SetRegisteredDrivers replaces the authoritative driver list applied to
// the device. Devices of the same owner share the list.
func (s *SimpleDeviceService) SetRegisteredDrivers(ctx context.Context, id domain.DeviceID, drivers []domain.DriverID) error {
	device, err := s.devices.Get(ctx, id)
	if err != nil {
		return err
	}

	unique := slices.Clone(drivers)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	if err := s.drivers.ReplaceDrivers(ctx, device.DriverOwner(), unique); err != nil {
		return fmt.Errorf("replacing drivers of device %s: %w", id.String(), err)
	}

	slog.Info("registered drivers replaced",
		slog.String("device_id", id.String()),
		slog.Int64("owner_id", int64(device.DriverOwner())),
		slog.Int("drivers", len(unique)))
	return nil
}
