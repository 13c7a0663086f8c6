package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/infra/async"
)

const (
	ProgressTopic async.BrokerTopicName = "sync_progress"

	ProgressEventName = "progress"
	FinishedEventName = "finished"
)

var (
	ErrDeviceBusy = errors.New("device already has a running sync")
	ErrNoDevices  = errors.New("no devices to synchronize")
	ErrSyncBusy   = errors.New("inventory sync already running")
)

func NewSyncService(
	engine *Engine,
	devices DeviceRepository,
	drivers DriverRepository,
	runs SyncRunRepository,
	inventory *InventorySync,
	broker async.InternalBroker,
) *SimpleSyncService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SimpleSyncService{
		ctx:       ctx,
		cancel:    cancel,
		engine:    engine,
		devices:   devices,
		drivers:   drivers,
		runs:      runs,
		inventory: inventory,
		broker:    broker,
		busy:      make(map[domain.DeviceID]domain.ID),
	}
}

var _ SyncService = &SimpleSyncService{}

// SimpleSyncService starts sync runs in the background. A device belongs to
// at most one running driver sync at a time.
type SimpleSyncService struct {
	engine    *Engine
	devices   DeviceRepository
	drivers   DriverRepository
	runs      SyncRunRepository
	inventory *InventorySync
	broker    async.InternalBroker
	ctx       context.Context
	cancel    context.CancelFunc

	mu               sync.Mutex
	busy             map[domain.DeviceID]domain.ID
	inventoryRunning bool
	wg               sync.WaitGroup
}

func (s *SimpleSyncService) StartDriverSync(ctx context.Context, ids []domain.DeviceID) (domain.SyncRun, error) {
	if len(ids) == 0 {
		all, err := s.devices.FindAllIDs(ctx)
		if err != nil {
			return domain.SyncRun{}, fmt.Errorf("listing devices: %w", err)
		}
		ids = all
	}
	if len(ids) == 0 {
		return domain.SyncRun{}, ErrNoDevices
	}

	devices := make([]domain.Device, 0, len(ids))
	for _, id := range ids {
		device, err := s.devices.Get(ctx, id)
		if err != nil {
			return domain.SyncRun{}, fmt.Errorf("getting device %s: %w", id.String(), err)
		}
		devices = append(devices, device)
	}

	run, err := domain.NewSyncRunBuilder().
		WithKind(domain.SyncRunKindDrivers).
		WithDeviceIDs(ids).
		Build()
	if err != nil {
		return domain.SyncRun{}, err
	}

	if err := s.reserveDevices(ids, run.ID); err != nil {
		return domain.SyncRun{}, err
	}

	if err := s.runs.Create(ctx, run); err != nil {
		s.releaseDevices(ids)
		return domain.SyncRun{}, fmt.Errorf("creating sync run: %w", err)
	}

	s.wg.Add(1)
	go s.executeDriverRun(context.WithoutCancel(ctx), run, devices)

	return run, nil
}

func (s *SimpleSyncService) StartInventorySync(ctx context.Context) (domain.SyncRun, error) {
	s.mu.Lock()
	if s.inventoryRunning {
		s.mu.Unlock()
		return domain.SyncRun{}, ErrSyncBusy
	}
	s.inventoryRunning = true
	s.mu.Unlock()

	run, err := domain.NewSyncRunBuilder().WithKind(domain.SyncRunKindInventory).Build()
	if err == nil {
		err = s.runs.Create(ctx, run)
	}
	if err != nil {
		s.mu.Lock()
		s.inventoryRunning = false
		s.mu.Unlock()
		return domain.SyncRun{}, fmt.Errorf("creating sync run: %w", err)
	}

	s.wg.Add(1)
	go s.executeInventoryRun(context.WithoutCancel(ctx), run)

	return run, nil
}

func (s *SimpleSyncService) GetRun(ctx context.Context, id domain.ID) (domain.SyncRun, error) {
	return s.runs.Get(ctx, id)
}

func (s *SimpleSyncService) FindRuns(ctx context.Context, pagination Pagination) ([]domain.SyncRun, int, error) {
	return s.runs.FindAll(ctx, pagination)
}

// Wait blocks until every started run is finished.
func (s *SimpleSyncService) Wait() {
	s.wg.Wait()
}

// Shutdown cancels the running jobs and waits for their runs to be recorded.
func (s *SimpleSyncService) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// jobContext keeps the values of ctx but is cancelled by Shutdown.
func (s *SimpleSyncService) jobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	jobCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return jobCtx, func() {
		stop()
		cancel()
	}
}

func (s *SimpleSyncService) executeDriverRun(ctx context.Context, run domain.SyncRun, devices []domain.Device) {
	defer s.wg.Done()
	defer s.releaseDevices(run.DeviceIDs)

	run.Start()
	if err := s.runs.Update(ctx, run); err != nil {
		slog.Error("updating sync run", slog.String("run_id", run.ID.String()), slog.Any("error", err))
	}

	jobCtx, cancel := s.jobContext(ctx)
	report := s.engine.NewDriverSyncJob(s.drivers).Run(jobCtx, devices, s.progressPublisher(ctx, run.ID))
	cancel()

	var runErr error
	aborted := 0
	for _, device := range report.Devices {
		if device.Aborted {
			aborted++
			runErr = device.Err
		}
	}
	if aborted < len(report.Devices) {
		runErr = nil
	}

	run.Finish(report.Outcomes(), runErr)
	s.finishRun(ctx, run)
}

func (s *SimpleSyncService) executeInventoryRun(ctx context.Context, run domain.SyncRun) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.inventoryRunning = false
		s.mu.Unlock()
	}()

	run.Start()
	if err := s.runs.Update(ctx, run); err != nil {
		slog.Error("updating sync run", slog.String("run_id", run.ID.String()), slog.Any("error", err))
	}

	jobCtx, cancel := s.jobContext(ctx)
	report := s.inventory.Run(jobCtx, s.progressPublisher(ctx, run.ID))
	cancel()

	var runErr error
	if report.Aborted {
		runErr = report.Err
	}
	run.Rows = report.Rows
	run.Finish(nil, runErr)
	s.finishRun(ctx, run)
}

func (s *SimpleSyncService) finishRun(ctx context.Context, run domain.SyncRun) {
	if err := s.runs.Update(ctx, run); err != nil {
		slog.Error("updating sync run", slog.String("run_id", run.ID.String()), slog.Any("error", err))
	}

	s.publish(ctx, FinishedEventName, run)

	slog.Info("sync run finished",
		slog.String("run_id", run.ID.String()),
		slog.String("kind", string(run.Kind)),
		slog.String("status", string(run.Status)),
		slog.Int("removed", run.Removed),
		slog.Int("inserted", run.Inserted),
		slog.Int("rows", run.Rows))
}

func (s *SimpleSyncService) progressPublisher(ctx context.Context, runID domain.ID) ProgressReporter {
	return func(done, total float64, label string, row any) {
		s.publish(ctx, ProgressEventName, domain.ProgressEvent{
			RunID: runID,
			Done:  done,
			Total: total,
			Label: label,
			Row:   row,
		})
	}
}

func (s *SimpleSyncService) publish(ctx context.Context, event string, value any) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, ProgressTopic, async.BrokerMessage{Event: event, Value: value})
	if err != nil && !errors.Is(err, async.ErrTopicNotFound) {
		slog.Warn("publishing sync progress", slog.Any("error", err))
	}
}

func (s *SimpleSyncService) reserveDevices(ids []domain.DeviceID, runID domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if owner, ok := s.busy[id]; ok {
			return fmt.Errorf("%w: device %s in run %s", ErrDeviceBusy, id.String(), owner.String())
		}
	}
	for _, id := range ids {
		s.busy[id] = runID
	}
	return nil
}

func (s *SimpleSyncService) releaseDevices(ids []domain.DeviceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.busy, id)
	}
}
