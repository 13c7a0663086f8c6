package usecases

import (
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/logger"
)

// Engine wires the request protocol shared by driver sync jobs and bulk
// synchronizers: classification, TryAgain backoff, queue polling and the
// shared rate limit gate.
type Engine struct {
	transport  communication.Transport
	classifier *communication.Classifier
	gate       *RateLimitGate
	pauser     Pauser
	settings   domain.SyncSettings
	logger     logger.Logger
	now        func() time.Time
}

func NewEngine(
	transport communication.Transport,
	gate *RateLimitGate,
	settings domain.SyncSettings,
	log logger.Logger,
) *Engine {
	return &Engine{
		transport:  transport,
		classifier: communication.NewClassifier(log),
		gate:       gate,
		pauser:     TimerPauser{},
		settings:   settings.WithDefaults(),
		logger:     log,
		now:        time.Now,
	}
}

func (e *Engine) WithPauser(pauser Pauser) *Engine {
	e.pauser = pauser
	return e
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) Settings() domain.SyncSettings {
	return e.settings
}

func (e *Engine) requester() *requester {
	return &requester{
		transport:  e.transport,
		classifier: e.classifier,
		gate:       e.gate,
		pauser:     e.pauser,
		settings:   e.settings,
		logger:     e.logger,
	}
}

func (e *Engine) NewJob(tasks ...Task) *Job {
	poller := communication.NewQueuePoller(e.transport, e.logger, e.settings.QueueConfirmationWindow).
		WithClock(e.now).
		WithLocation(e.settings.APILocation)
	job := &Job{
		tasks:     tasks,
		requester: e.requester(),
		waiter: &queueWaiter{
			poller:   poller,
			gate:     e.gate,
			pauser:   e.pauser,
			settings: e.settings,
			logger:   e.logger,
		},
		pauser: e.pauser,
		logger: e.logger,
		now:    e.now,
	}
	job.setupOtelCounters()
	return job
}

// NewDriverSyncJob builds the four step pipeline that makes the driver list
// of each device match the authoritative list.
func (e *Engine) NewDriverSyncJob(drivers DriverRepository) *Job {
	return e.NewJob(
		NewRequestStoredDriversTask(e.settings),
		NewReadStoredDriversTask(drivers, e.logger),
		NewRemoveDriversTask(e.logger),
		NewInsertDriversTask(e.settings, e.logger),
	)
}

func (e *Engine) NewSynchronizer() *Synchronizer {
	return &Synchronizer{
		requester: e.requester(),
		logger:    e.logger,
	}
}
