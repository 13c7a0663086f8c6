package steps

import (
	"net/http/httptest"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/httpapi"
	"fleet-sync-server/internal/driver_sync/persistence"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/async"
	"fleet-sync-server/internal/infra/cache"
	"fleet-sync-server/internal/infra/httpserver"
	"fleet-sync-server/internal/infra/sql"
	"fleet-sync-server/internal/logger"
	"fleet-sync-server/test/functional/driver"

	"github.com/google/uuid"
)

const _trackingAPIKey = "functional-key"

// application runs the whole server in process against a fake tracking API,
// with pauses short enough for scenarios.
type application struct {
	tracking *driver.TrackingAPI
	server   *httptest.Server
	service  *usecases.SimpleSyncService
	progress *httpapi.SyncProgressWebSocketController
	broker   *async.LocalBroker
}

func startApplication() (*application, error) {
	tracking := driver.NewTrackingAPI(_trackingAPIKey)
	log := logger.NewNopLogger()

	orm, err := sql.NewMemoryORM(uuid.NewString())
	if err != nil {
		return nil, err
	}
	store, err := cache.New(cache.DefaultConfig())
	if err != nil {
		return nil, err
	}

	transport, err := communication.NewHTTPTransport(communication.HTTPTransportConfig{
		BaseURL: tracking.URL(),
		Key:     _trackingAPIKey,
		Timeout: 5 * time.Second,
	}, log)
	if err != nil {
		return nil, err
	}

	settings := domain.SyncSettings{
		WaitAfterListRequest: 0,
		RetryInitialInterval: 10 * time.Millisecond,
		RetryMaxInterval:     50 * time.Millisecond,
		QueuePollInterval:    10 * time.Millisecond,
		MaxQueuePolls:        5,
	}.WithDefaults()
	engine := usecases.NewEngine(transport, usecases.NewRateLimitGate(store), settings, log)

	devices, err := persistence.NewDeviceRepository(orm)
	if err != nil {
		return nil, err
	}
	simpleDrivers, err := persistence.NewDriverRepository(orm)
	if err != nil {
		return nil, err
	}
	drivers := persistence.NewCachedDriverRepository(simpleDrivers, store)
	runs, err := persistence.NewSyncRunRepository(orm)
	if err != nil {
		return nil, err
	}

	broker := async.NewLocalBroker()
	inventory := usecases.NewInventorySync(engine, devices, usecases.InventorySyncConfig{}, log)
	service := usecases.NewSyncService(engine, devices, drivers, runs, inventory, broker)
	progress := httpapi.NewSyncProgressWebSocketController(broker, service)

	server := httpserver.NewServer(
		httpserver.ServerConfig{},
		httpapi.NewSyncRunController(service),
		httpapi.NewDeviceController(usecases.NewDeviceService(devices, drivers), service),
		progress,
	)

	return &application{
		tracking: tracking,
		server:   httptest.NewServer(server.Handler()),
		service:  service,
		progress: progress,
		broker:   broker,
	}, nil
}

func (a *application) URL() string {
	return a.server.URL
}

func (a *application) stop() {
	a.service.Shutdown()
	a.progress.Shutdown()
	a.server.Close()
	a.broker.Stop()
	a.tracking.Close()
}
