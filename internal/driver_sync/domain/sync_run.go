package domain

import (
	"errors"
	"time"

	"fleet-sync-server/internal/infra/utils"
)

type SyncRunKind string

const (
	SyncRunKindDrivers   SyncRunKind = "drivers"
	SyncRunKindInventory SyncRunKind = "inventory"
)

type SyncRunStatus string

const (
	SyncRunStatusPending  SyncRunStatus = "pending"
	SyncRunStatusRunning  SyncRunStatus = "running"
	SyncRunStatusFinished SyncRunStatus = "finished"
	SyncRunStatusFailed   SyncRunStatus = "failed"
)

// DeviceOutcome summarizes what a sync run did to one device.
type DeviceOutcome struct {
	DeviceID DeviceID
	Removed  []DriverID
	Inserted []DriverID
	Aborted  bool
	Error    string
}

type SyncRun struct {
	ID         ID
	Version    int
	Kind       SyncRunKind
	Status     SyncRunStatus
	DeviceIDs  []DeviceID
	Outcomes   []DeviceOutcome
	Removed    int
	Inserted   int
	Rows       int
	Error      string
	CreatedAt  utils.Time
	StartedAt  *utils.Time
	FinishedAt *utils.Time
}

func (r SyncRun) IsCompleted() bool {
	return r.Status == SyncRunStatusFinished || r.Status == SyncRunStatusFailed
}

func (r *SyncRun) Start() {
	now := utils.Time{Time: time.Now()}
	r.Status = SyncRunStatusRunning
	r.StartedAt = &now
	r.Version++
}

// Finish records the device outcomes and moves the run to its final state.
func (r *SyncRun) Finish(outcomes []DeviceOutcome, err error) {
	now := utils.Time{Time: time.Now()}
	r.Outcomes = outcomes
	r.Removed, r.Inserted = 0, 0
	for _, outcome := range outcomes {
		r.Removed += len(outcome.Removed)
		r.Inserted += len(outcome.Inserted)
	}
	r.Status = SyncRunStatusFinished
	if err != nil {
		r.Status = SyncRunStatusFailed
		r.Error = err.Error()
	}
	r.FinishedAt = &now
	r.Version++
}

// ProgressEvent is published while a run advances. Done never decreases
// during a run.
type ProgressEvent struct {
	RunID ID
	Done  float64
	Total float64
	Label string
	Row   any
}

func NewSyncRunBuilder() *syncRunBuilder {
	return &syncRunBuilder{}
}

type syncRunBuilder struct {
	actions []syncRunHandler
}

type syncRunHandler func(v *SyncRun) error

func (b *syncRunBuilder) WithKind(value SyncRunKind) *syncRunBuilder {
	b.actions = append(b.actions, func(r *SyncRun) error {
		r.Kind = value
		return nil
	})
	return b
}

func (b *syncRunBuilder) WithDeviceIDs(value []DeviceID) *syncRunBuilder {
	b.actions = append(b.actions, func(r *SyncRun) error {
		r.DeviceIDs = value
		return nil
	})
	return b
}

func (b *syncRunBuilder) Build() (SyncRun, error) {
	result := SyncRun{
		ID:        ID(utils.GenerateUUID()),
		Version:   1,
		Status:    SyncRunStatusPending,
		DeviceIDs: make([]DeviceID, 0),
		Outcomes:  make([]DeviceOutcome, 0),
		CreatedAt: utils.Time{Time: time.Now()},
	}
	for _, a := range b.actions {
		if err := a(&result); err != nil {
			return SyncRun{}, err
		}
	}

	if result.Kind == "" {
		return SyncRun{}, errors.New("kind is required")
	}

	return result, nil
}
