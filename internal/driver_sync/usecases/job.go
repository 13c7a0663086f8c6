package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type DeviceReport struct {
	Device   domain.Device
	Removed  []domain.DriverID
	Inserted []domain.DriverID
	// Skipped holds the task whose unretryable answer ended the device run.
	// Such a device is not aborted; Err carries the answer.
	Skipped []string
	Aborted bool
	Err     error
}

type JobReport struct {
	Devices  []DeviceReport
	Removed  int
	Inserted int
}

func (r JobReport) Outcomes() []domain.DeviceOutcome {
	outcomes := make([]domain.DeviceOutcome, 0, len(r.Devices))
	for _, device := range r.Devices {
		outcome := domain.DeviceOutcome{
			DeviceID: device.Device.ID,
			Removed:  device.Removed,
			Inserted: device.Inserted,
			Aborted:  device.Aborted,
		}
		if device.Err != nil {
			outcome.Error = device.Err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Job runs an ordered list of tasks against every device, one device at a
// time. A Job is not safe for concurrent runs; independent jobs only share
// the transport and the rate limit gate.
type Job struct {
	tasks     []Task
	requester *requester
	waiter    *queueWaiter
	pauser    Pauser
	logger    logger.Logger
	now       func() time.Time

	removedCounter  metric.Int64Counter
	insertedCounter metric.Int64Counter
	outcomeCounter  metric.Int64Counter
}

func (j *Job) setupOtelCounters() {
	meter := otel.Meter("fleet-sync-server")
	j.removedCounter, _ = meter.Int64Counter("driver_sync.removed_drivers",
		metric.WithDescription("Driver ids removed from devices"))
	j.insertedCounter, _ = meter.Int64Counter("driver_sync.inserted_drivers",
		metric.WithDescription("Driver ids inserted into devices"))
	j.outcomeCounter, _ = meter.Int64Counter("driver_sync.responses",
		metric.WithDescription("Classified tracking api responses"))
}

// Run processes devices in order and never fails as a whole: device
// failures are reported per device.
func (j *Job) Run(ctx context.Context, devices []domain.Device, progress ProgressReporter) JobReport {
	ctx, span := otel.Tracer("fleet-sync-server").Start(ctx, "driver_sync.job")
	defer span.End()
	span.SetAttributes(attribute.Int("devices", len(devices)))

	tracker := newProgressTracker(progress, float64(len(devices)*len(j.tasks)))
	report := JobReport{Devices: make([]DeviceReport, 0, len(devices))}

	for cursor := 0; cursor < len(devices); cursor++ {
		device := devices[cursor]
		if ctx.Err() != nil {
			report.Devices = append(report.Devices, DeviceReport{Device: device, Aborted: true, Err: ctx.Err()})
			continue
		}

		deviceReport := j.runDevice(ctx, cursor, device, tracker)
		report.Removed += len(deviceReport.Removed)
		report.Inserted += len(deviceReport.Inserted)
		report.Devices = append(report.Devices, deviceReport)
	}

	j.logger.Infow("driver sync job finished",
		"devices", len(devices),
		"removed", report.Removed,
		"inserted", report.Inserted)

	return report
}

func (j *Job) runDevice(ctx context.Context, cursor int, device domain.Device, tracker *progressTracker) DeviceReport {
	ctx, span := otel.Tracer("fleet-sync-server").Start(ctx, "driver_sync.device")
	defer span.End()
	span.SetAttributes(attribute.String("device_id", device.ID.String()))

	run := NewDeviceRun(device)
	report := DeviceReport{Device: device}

	for taskIndex, task := range j.tasks {
		base := float64(cursor*len(j.tasks) + taskIndex)
		label := fmt.Sprintf("%s: %s", device.ID.String(), task.Name())

		skipped, err := j.runTask(ctx, run, task, func() {
			tracker.report(base+run.taskFraction(), label)
		})
		tracker.report(base+1, label)
		if skipped {
			report.Skipped = append(report.Skipped, task.Name())
			report.Err = err
			j.logger.Warnw("device sync skipped", "device_id", device.ID.String(), "task", task.Name(), "reason", err)
			tracker.report(float64((cursor+1)*len(j.tasks)), label)
			break
		}
		if err != nil {
			report.Aborted = true
			report.Err = err
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			j.logger.Errorw("device sync aborted", "device_id", device.ID.String(), "task", task.Name(), "error", err)
			tracker.report(float64((cursor+1)*len(j.tasks)), label)
			break
		}
	}

	report.Removed = run.Removed
	report.Inserted = run.Inserted
	j.removedCounter.Add(ctx, int64(len(run.Removed)))
	j.insertedCounter.Add(ctx, int64(len(run.Inserted)))

	j.logger.Infow("device sync finished",
		"device_id", device.ID.String(),
		"removed", len(run.Removed),
		"inserted", len(run.Inserted),
		"skipped", len(report.Skipped) > 0,
		"aborted", report.Aborted)

	return report
}

// runTask loops Prepare, Request, optional queue polling and Process until
// the task has nothing left to do. skipped is true when an unretryable
// answer ended the loop and err then holds that answer; otherwise err
// aborts the device.
func (j *Job) runTask(ctx context.Context, run *DeviceRun, task Task, onProgress func()) (skipped bool, err error) {
	run.resetTask()
	deviceID := run.Device.ID.String()

	for {
		req, perform, err := task.Prepare(ctx, run)
		if err != nil {
			return false, fmt.Errorf("preparing %s: %w", task.Name(), err)
		}
		if !perform {
			j.logger.Debugw("nothing to do", "device_id", deviceID, "task", task.Name())
			return false, nil
		}

		if err := j.waitForDevice(ctx, run); err != nil {
			return false, err
		}

		result := j.requester.Do(ctx, req.Path, req.Params)
		j.outcomeCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("path", req.Path),
			attribute.String("outcome", result.Outcome.String()),
		))

		switch result.Outcome {
		case communication.OutcomeAbort:
			return false, result.Err
		case communication.OutcomeGoNext:
			j.logger.Warnw("skipping device", "device_id", deviceID, "task", task.Name(), "reason", result.Message())
			return true, result.Err
		}

		if aware, ok := task.(QueueAware); ok && aware.AwaitsQueueConfirmation() {
			commandID, _ := communication.CommandID(result.Envelope.Data)
			if _, err := j.waiter.Wait(ctx, run.Device, commandID); err != nil {
				return false, err
			}
		}

		if delayer, ok := task.(Delayer); ok {
			run.notBefore = j.now().Add(delayer.WaitAfterRequest())
		}

		loop, err := task.Process(ctx, run, result.Envelope)
		if err != nil {
			return false, fmt.Errorf("processing %s: %w", task.Name(), err)
		}
		j.logger.Infow("task step processed", "device_id", deviceID, "task", task.Name(), "loop", loop)
		onProgress()

		if !loop {
			return false, nil
		}
	}
}

func (j *Job) waitForDevice(ctx context.Context, run *DeviceRun) error {
	if run.notBefore.IsZero() {
		return nil
	}
	wait := run.notBefore.Sub(j.now())
	if wait <= 0 {
		return nil
	}
	j.logger.Debugw("waiting for device report", "device_id", run.Device.ID.String(), "wait", wait)
	return j.pauser.Pause(ctx, wait)
}

// progressTracker keeps reported progress monotonic across tasks, pages
// and devices.
type progressTracker struct {
	reporter ProgressReporter
	total    float64
	last     float64
}

func newProgressTracker(reporter ProgressReporter, total float64) *progressTracker {
	return &progressTracker{reporter: reporter, total: total}
}

func (t *progressTracker) report(done float64, label string) {
	t.reportRow(done, label, nil)
}

func (t *progressTracker) reportRow(done float64, label string, row any) {
	if done < t.last {
		done = t.last
	}
	if t.total > 0 && done > t.total {
		done = t.total
	}
	t.last = done
	if t.reporter != nil {
		t.reporter(done, t.total, label, row)
	}
}

func isTransportError(err error) bool {
	var transportErr *communication.TransportError
	return errors.As(err, &transportErr)
}
