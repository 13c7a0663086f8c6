package usecases

import (
	"context"

	"fleet-sync-server/internal/driver_sync/domain"
)

//go:generate mockgen -source=./api.go -destination=../../../test/unit/doubles/driver_sync/usecases/api_mock.go -package=usecases -mock_names=SyncService=MockSyncService,DeviceService=MockDeviceService

type SyncService interface {
	StartDriverSync(context.Context, []domain.DeviceID) (domain.SyncRun, error)
	StartInventorySync(context.Context) (domain.SyncRun, error)
	GetRun(context.Context, domain.ID) (domain.SyncRun, error)
	FindRuns(context.Context, Pagination) ([]domain.SyncRun, int, error)
}

type DeviceService interface {
	AllDevices(context.Context, Pagination) ([]domain.Device, int, error)
	GetDevice(context.Context, domain.DeviceID) (domain.Device, error)
	SetRegisteredDrivers(context.Context, domain.DeviceID, []domain.DriverID) error
}

// ProgressReporter receives monotonic progress of a running job. row carries
// the row being processed by bulk synchronizations and is nil otherwise.
type ProgressReporter func(done, total float64, label string, row any)
