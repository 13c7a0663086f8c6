package usecases

import (
	"context"
	"net/url"
	"slices"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
)

// Request is one tracking API call prepared by a task.
type Request struct {
	Path   string
	Params url.Values
}

// Preparer builds the next request of a task for the device being
// processed. Returning perform=false ends the task for this device.
type Preparer interface {
	Prepare(ctx context.Context, run *DeviceRun) (req Request, perform bool, err error)
}

// Processor applies the business effect of a processed response and
// reports whether the task must loop for another chunk.
type Processor interface {
	Process(ctx context.Context, run *DeviceRun, envelope communication.Envelope) (loop bool, err error)
}

// QueueAware tasks wait for the device to confirm the submitted command
// before processing.
type QueueAware interface {
	AwaitsQueueConfirmation() bool
}

// Delayer tasks forbid further requests to the same device for a while
// after their command was accepted.
type Delayer interface {
	WaitAfterRequest() time.Duration
}

type Task interface {
	Name() string
	Preparer
	Processor
}

// DeviceRun is the state of one device inside a job run. It is created
// empty for every device and discarded when the device is done.
type DeviceRun struct {
	Device   domain.Device
	Removed  []domain.DriverID
	Inserted []domain.DriverID

	plan          domain.ReconciliationResult
	planned       bool
	pendingRemove []domain.DriverID
	pendingInsert []domain.DriverID
	notBefore     time.Time
	taskDone      float64
	taskTotal     float64
}

func NewDeviceRun(device domain.Device) *DeviceRun {
	return &DeviceRun{Device: device}
}

// SetPlan stores the reconciliation result consumed by the removal and
// insertion tasks.
func (r *DeviceRun) SetPlan(plan domain.ReconciliationResult) {
	r.plan = plan
	r.planned = true
	r.pendingRemove = slices.Clone(plan.ToRemove)
	r.pendingInsert = slices.Clone(plan.ToInsert)
}

func (r *DeviceRun) Plan() (domain.ReconciliationResult, bool) {
	return r.plan, r.planned
}

// NextRemoval returns the driver the removal task must send next.
func (r *DeviceRun) NextRemoval() (domain.DriverID, bool) {
	if len(r.pendingRemove) == 0 {
		return 0, false
	}
	return r.pendingRemove[0], true
}

// ConfirmRemoval drains the driver returned by NextRemoval.
func (r *DeviceRun) ConfirmRemoval() {
	if len(r.pendingRemove) == 0 {
		return
	}
	r.Removed = append(r.Removed, r.pendingRemove[0])
	r.pendingRemove = r.pendingRemove[1:]
}

func (r *DeviceRun) PendingRemovals() int {
	return len(r.pendingRemove)
}

// NextInsertPage returns up to size drivers for the insertion task.
func (r *DeviceRun) NextInsertPage(size int) []domain.DriverID {
	pages := domain.Chunk(r.pendingInsert, size)
	if len(pages) == 0 {
		return nil
	}
	return pages[0]
}

// ConfirmInsertPage drains the page returned by NextInsertPage.
func (r *DeviceRun) ConfirmInsertPage(size int) {
	page := r.NextInsertPage(size)
	r.Inserted = append(r.Inserted, page...)
	r.pendingInsert = r.pendingInsert[len(page):]
}

func (r *DeviceRun) PendingInsertions() int {
	return len(r.pendingInsert)
}

// ReportTask records how far the current task went, done out of total.
func (r *DeviceRun) ReportTask(done, total int) {
	r.taskDone = float64(done)
	r.taskTotal = float64(total)
}

func (r *DeviceRun) taskFraction() float64 {
	if r.taskTotal <= 0 {
		return 0
	}
	fraction := r.taskDone / r.taskTotal
	if fraction > 1 {
		return 1
	}
	return fraction
}

func (r *DeviceRun) resetTask() {
	r.taskDone, r.taskTotal = 0, 0
}
