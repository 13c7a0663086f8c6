//go:build wireinject
// +build wireinject

package wire

import (
	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/httpapi"
	"fleet-sync-server/internal/driver_sync/persistence"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/async"

	"github.com/google/wire"
)

var EngineSet = wire.NewSet(
	provideAppConfig,
	provideLogger,
	provideCache,
	provideSyncSettings,
	provideHTTPTransportConfig,
	communication.NewHTTPTransport,
	wire.Bind(new(communication.Transport), new(*communication.HTTPTransport)),
	usecases.NewRateLimitGate,
	usecases.NewEngine,
)

var RepositorySet = wire.NewSet(
	provideDatabase,
	persistence.NewDeviceRepository,
	wire.Bind(new(usecases.DeviceRepository), new(*persistence.SimpleDeviceRepository)),
	persistence.NewDriverRepository,
	provideDriverRepository,
	persistence.NewSyncRunRepository,
	wire.Bind(new(usecases.SyncRunRepository), new(*persistence.SimpleSyncRunRepository)),
)

func InitializeSyncService(broker async.InternalBroker) (*usecases.SimpleSyncService, error) {
	wire.Build(
		EngineSet,
		RepositorySet,
		provideInventorySyncConfig,
		usecases.NewInventorySync,
		usecases.NewSyncService,
	)
	return nil, nil
}

func InitializeSyncRunController(service usecases.SyncService) (*httpapi.SyncRunController, error) {
	wire.Build(
		httpapi.NewSyncRunController,
	)
	return nil, nil
}

func InitializeDeviceController(service usecases.SyncService) (*httpapi.DeviceController, error) {
	wire.Build(
		provideAppConfig,
		provideCache,
		RepositorySet,
		usecases.NewDeviceService,
		wire.Bind(new(usecases.DeviceService), new(*usecases.SimpleDeviceService)),
		httpapi.NewDeviceController,
	)
	return nil, nil
}

func InitializeSyncProgressWebSocketController(broker async.InternalBroker, service usecases.SyncService) (*httpapi.SyncProgressWebSocketController, error) {
	wire.Build(
		httpapi.NewSyncProgressWebSocketController,
	)
	return nil, nil
}

func InitializeScheduledSyncWorker(service usecases.SyncService) (*usecases.ScheduledSyncWorker, error) {
	wire.Build(
		provideAppConfig,
		provideTicker,
		provideSyncSchedules,
		usecases.NewScheduledSyncWorker,
	)
	return nil, nil
}
