package usecases

import (
	"context"
	"errors"

	"fleet-sync-server/internal/driver_sync/domain"
)

//go:generate mockgen -source=repository_port.go -destination=../../../test/unit/doubles/driver_sync/usecases/repository_port_mock.go -package=usecases -mock_names=DeviceRepository=MockDeviceRepository,DriverRepository=MockDriverRepository,SyncRunRepository=MockSyncRunRepository

var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrSyncRunNotFound = errors.New("sync run not found")
)

// Pagination encapsulates pagination parameters for repository queries
type Pagination struct {
	Limit  int
	Offset int
}

type DeviceRepository interface {
	Upsert(context.Context, domain.Device) error
	Get(context.Context, domain.DeviceID) (domain.Device, error)
	FindAll(context.Context, Pagination) ([]domain.Device, int, error)
	FindAllIDs(context.Context) ([]domain.DeviceID, error)
}

// DriverRepository holds the authoritative driver list of each device owner.
type DriverRepository interface {
	RegisteredDrivers(context.Context, domain.Device) ([]domain.DriverID, error)
	ReplaceDrivers(context.Context, domain.OwnerID, []domain.DriverID) error
}

type SyncRunRepository interface {
	Create(context.Context, domain.SyncRun) error
	Update(context.Context, domain.SyncRun) error
	Get(context.Context, domain.ID) (domain.SyncRun, error)
	FindAll(context.Context, Pagination) ([]domain.SyncRun, int, error)
}
