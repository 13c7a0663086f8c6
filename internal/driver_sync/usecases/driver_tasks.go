package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/logger"
)

func deviceParams(device domain.Device) url.Values {
	params := url.Values{}
	params.Set(communication.ParamDeviceID, device.ID.String())
	return params
}

// RequestStoredDriversTask asks the device to report the driver ids stored
// in its memory. The device answers asynchronously, so no other request is
// sent to it until the report had time to arrive.
type RequestStoredDriversTask struct {
	wait time.Duration
}

var (
	_ Task       = &RequestStoredDriversTask{}
	_ QueueAware = &RequestStoredDriversTask{}
	_ Delayer    = &RequestStoredDriversTask{}
)

func NewRequestStoredDriversTask(settings domain.SyncSettings) *RequestStoredDriversTask {
	return &RequestStoredDriversTask{wait: settings.WaitAfterListRequest}
}

func (t *RequestStoredDriversTask) Name() string {
	return "request_stored_drivers"
}

func (t *RequestStoredDriversTask) AwaitsQueueConfirmation() bool {
	return true
}

func (t *RequestStoredDriversTask) WaitAfterRequest() time.Duration {
	return t.wait
}

func (t *RequestStoredDriversTask) Prepare(_ context.Context, run *DeviceRun) (Request, bool, error) {
	return Request{Path: communication.PathRequestDriverList, Params: deviceParams(run.Device)}, true, nil
}

func (t *RequestStoredDriversTask) Process(_ context.Context, run *DeviceRun, _ communication.Envelope) (bool, error) {
	run.ReportTask(1, 1)
	return false, nil
}

// ReadStoredDriversTask reads the reported driver list and reconciles it
// with the authoritative list of the device owner.
type ReadStoredDriversTask struct {
	drivers DriverRepository
	logger  logger.Logger
}

var _ Task = &ReadStoredDriversTask{}

func NewReadStoredDriversTask(drivers DriverRepository, log logger.Logger) *ReadStoredDriversTask {
	return &ReadStoredDriversTask{drivers: drivers, logger: log}
}

func (t *ReadStoredDriversTask) Name() string {
	return "read_stored_drivers"
}

func (t *ReadStoredDriversTask) Prepare(_ context.Context, run *DeviceRun) (Request, bool, error) {
	return Request{Path: communication.PathDriverList, Params: deviceParams(run.Device)}, true, nil
}

func (t *ReadStoredDriversTask) Process(ctx context.Context, run *DeviceRun, envelope communication.Envelope) (bool, error) {
	stored, err := communication.StoredDriversFromData(envelope.Data)
	if err != nil {
		return false, err
	}

	registered, err := t.drivers.RegisteredDrivers(ctx, run.Device)
	if err != nil {
		return false, fmt.Errorf("loading registered drivers: %w", err)
	}

	plan := domain.Reconcile(stored, registered)
	deviceID := run.Device.ID.String()
	t.logger.Debugw("drivers stored on device", "device_id", deviceID, "drivers", stored.Values())
	t.logger.Debugw("drivers not registered", "device_id", deviceID, "drivers", plan.NotRegistered)
	t.logger.Debugw("duplicated drivers", "device_id", deviceID, "drivers", plan.Duplicated)
	t.logger.Debugw("drivers missing on device", "device_id", deviceID, "drivers", plan.UnregisteredLocally)
	t.logger.Debugw("drivers to reinsert", "device_id", deviceID, "drivers", plan.ToReinsert)
	t.logger.Infow("driver reconciliation",
		"device_id", deviceID,
		"stored", len(stored),
		"registered", len(registered),
		"to_remove", len(plan.ToRemove),
		"to_insert", len(plan.ToInsert))

	run.SetPlan(plan)
	run.ReportTask(1, 1)
	return false, nil
}

// RemoveDriversTask removes one driver id per request and waits for the
// device to confirm each removal.
type RemoveDriversTask struct {
	logger logger.Logger
}

var (
	_ Task       = &RemoveDriversTask{}
	_ QueueAware = &RemoveDriversTask{}
)

func NewRemoveDriversTask(log logger.Logger) *RemoveDriversTask {
	return &RemoveDriversTask{logger: log}
}

func (t *RemoveDriversTask) Name() string {
	return "remove_drivers"
}

func (t *RemoveDriversTask) AwaitsQueueConfirmation() bool {
	return true
}

func (t *RemoveDriversTask) Prepare(_ context.Context, run *DeviceRun) (Request, bool, error) {
	driverID, ok := run.NextRemoval()
	if !ok {
		return Request{}, false, nil
	}
	params := deviceParams(run.Device)
	params.Set(communication.ParamDriverID, driverID.String())
	return Request{Path: communication.PathRemoveDriver, Params: params}, true, nil
}

func (t *RemoveDriversTask) Process(_ context.Context, run *DeviceRun, _ communication.Envelope) (bool, error) {
	driverID, _ := run.NextRemoval()
	run.ConfirmRemoval()
	t.logger.Infow("driver removed", "device_id", run.Device.ID.String(), "driver_id", driverID.String())

	plan, _ := run.Plan()
	run.ReportTask(len(run.Removed), len(plan.ToRemove))
	return run.PendingRemovals() > 0, nil
}

// InsertDriversTask inserts driver ids in pages, one request per page.
type InsertDriversTask struct {
	pageSize int
	logger   logger.Logger
}

var _ Task = &InsertDriversTask{}

func NewInsertDriversTask(settings domain.SyncSettings, log logger.Logger) *InsertDriversTask {
	return &InsertDriversTask{pageSize: settings.InsertPageSize, logger: log}
}

func (t *InsertDriversTask) Name() string {
	return "insert_drivers"
}

func (t *InsertDriversTask) Prepare(_ context.Context, run *DeviceRun) (Request, bool, error) {
	page := run.NextInsertPage(t.pageSize)
	if len(page) == 0 {
		return Request{}, false, nil
	}
	params := deviceParams(run.Device)
	for _, driverID := range page {
		params.Add(communication.ParamDriverIDs, strconv.FormatInt(int64(driverID), 10))
	}
	return Request{Path: communication.PathInsertDrivers, Params: params}, true, nil
}

func (t *InsertDriversTask) Process(_ context.Context, run *DeviceRun, _ communication.Envelope) (bool, error) {
	page := run.NextInsertPage(t.pageSize)
	run.ConfirmInsertPage(t.pageSize)
	t.logger.Infow("drivers inserted", "device_id", run.Device.ID.String(), "count", len(page))

	plan, _ := run.Plan()
	run.ReportTask(len(run.Inserted), len(plan.ToInsert))
	return run.PendingInsertions() > 0, nil
}
