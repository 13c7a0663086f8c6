package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fleet-sync-server/internal/infra/async"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type SyncSchedules struct {
	Drivers   string
	Inventory string
}

func NewScheduledSyncWorker(ticker *time.Ticker, service SyncService, schedules SyncSchedules) *ScheduledSyncWorker {
	return &ScheduledSyncWorker{
		ticker:     ticker,
		service:    service,
		schedules:  schedules,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

var _ async.Worker = &ScheduledSyncWorker{}

// ScheduledSyncWorker checks the cron schedules once per tick and starts
// the runs that are due. An empty schedule disables that kind of run.
type ScheduledSyncWorker struct {
	ticker     *time.Ticker
	service    SyncService
	schedules  SyncSchedules
	cronParser cron.Parser
	now        func() time.Time
	started    metric.Float64Counter
	stop       chan struct{}
	stopOnce   sync.Once
}

func (w *ScheduledSyncWorker) Run(ctx context.Context, done func()) {
	slog.Debug("scheduled sync worker started")
	defer done()
	w.setupOtelCounters()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduled sync worker cancelled")
			return
		case <-w.stop:
			return
		case <-w.ticker.C:
			w.evaluateSchedules(ctx)
		}
	}
}

func (w *ScheduledSyncWorker) Shutdown() {
	w.stopOnce.Do(func() {
		w.ticker.Stop()
		close(w.stop)
	})
}

func (w *ScheduledSyncWorker) setupOtelCounters() {
	meter := otel.Meter("fleet-sync-server")
	w.started, _ = meter.Float64Counter(
		"fleet_sync_server.scheduled_syncs",
		metric.WithDescription("fleet sync server scheduled sync counter"),
	)
}

func (w *ScheduledSyncWorker) evaluateSchedules(ctx context.Context) {
	now := w.now()

	if w.isDue(w.schedules.Drivers, now) {
		_, err := w.service.StartDriverSync(ctx, nil)
		w.record(ctx, "drivers", err)
	}

	if w.isDue(w.schedules.Inventory, now) {
		_, err := w.service.StartInventorySync(ctx)
		w.record(ctx, "inventory", err)
	}
}

func (w *ScheduledSyncWorker) isDue(schedule string, now time.Time) bool {
	if schedule == "" {
		return false
	}
	due, err := w.shouldExecuteSchedule(schedule, now)
	if err != nil {
		slog.Error("evaluating schedule", slog.String("schedule", schedule), slog.Any("error", err))
		return false
	}
	return due
}

func (w *ScheduledSyncWorker) shouldExecuteSchedule(schedule string, now time.Time) (bool, error) {
	scheduleSpec, err := w.cronParser.Parse(schedule)
	if err != nil {
		return false, fmt.Errorf("parsing cron schedule: %w", err)
	}

	nextRun := scheduleSpec.Next(now.Add(-time.Minute))
	return nextRun.Before(now) || nextRun.Equal(now), nil
}

func (w *ScheduledSyncWorker) record(ctx context.Context, kind string, err error) {
	switch {
	case err == nil:
		slog.Info("scheduled sync started", slog.String("kind", kind))
		if w.started != nil {
			w.started.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		}
	case errors.Is(err, ErrDeviceBusy), errors.Is(err, ErrSyncBusy), errors.Is(err, ErrNoDevices):
		slog.Info("scheduled sync skipped", slog.String("kind", kind), slog.Any("reason", err))
	default:
		slog.Error("starting scheduled sync", slog.String("kind", kind), slog.Any("error", err))
	}
}
