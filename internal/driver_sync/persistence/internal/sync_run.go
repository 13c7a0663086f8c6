package internal

import (
	"database/sql/driver"
	"errors"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/infra/utils"

	"github.com/goccy/go-json"
)

type SyncRun struct {
	ID         string      `json:"id" gorm:"primaryKey"`
	Version    int         `json:"version"`
	Kind       string      `json:"kind" gorm:"index"`
	Status     string      `json:"status"`
	DeviceIDs  IDList      `json:"device_ids" gorm:"type:json"`
	Outcomes   OutcomeList `json:"outcomes" gorm:"type:json"`
	Removed    int         `json:"removed"`
	Inserted   int         `json:"inserted"`
	Rows       int         `json:"rows"`
	Error      string      `json:"error"`
	CreatedAt  time.Time   `json:"created_at" gorm:"index"`
	StartedAt  *time.Time  `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

type IDList []int64

func (v IDList) Value() (driver.Value, error) {
	if v == nil {
		v = IDList{}
	}
	data, err := json.Marshal(v)
	return string(data), err
}

func (v *IDList) Scan(value any) error {
	return scanJSON(value, v)
}

type Outcome struct {
	DeviceID int64   `json:"device_id"`
	Removed  []int64 `json:"removed"`
	Inserted []int64 `json:"inserted"`
	Aborted  bool    `json:"aborted"`
	Error    string  `json:"error,omitempty"`
}

type OutcomeList []Outcome

func (v OutcomeList) Value() (driver.Value, error) {
	if v == nil {
		v = OutcomeList{}
	}
	data, err := json.Marshal(v)
	return string(data), err
}

func (v *OutcomeList) Scan(value any) error {
	return scanJSON(value, v)
}

func scanJSON(value any, target any) error {
	switch data := value.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(data), target)
	case []byte:
		return json.Unmarshal(data, target)
	default:
		return errors.New("type assertion to string or []byte failed")
	}
}

func FromSyncRun(run domain.SyncRun) SyncRun {
	ids := make(IDList, 0, len(run.DeviceIDs))
	for _, id := range run.DeviceIDs {
		ids = append(ids, int64(id))
	}

	outcomes := make(OutcomeList, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		outcomes = append(outcomes, Outcome{
			DeviceID: int64(o.DeviceID),
			Removed:  fromDrivers(o.Removed),
			Inserted: fromDrivers(o.Inserted),
			Aborted:  o.Aborted,
			Error:    o.Error,
		})
	}

	return SyncRun{
		ID:         run.ID.String(),
		Version:    run.Version,
		Kind:       string(run.Kind),
		Status:     string(run.Status),
		DeviceIDs:  ids,
		Outcomes:   outcomes,
		Removed:    run.Removed,
		Inserted:   run.Inserted,
		Rows:       run.Rows,
		Error:      run.Error,
		CreatedAt:  run.CreatedAt.Time,
		StartedAt:  fromTime(run.StartedAt),
		FinishedAt: fromTime(run.FinishedAt),
	}
}

func (r SyncRun) ToDomain() domain.SyncRun {
	ids := make([]domain.DeviceID, 0, len(r.DeviceIDs))
	for _, id := range r.DeviceIDs {
		ids = append(ids, domain.DeviceID(id))
	}

	outcomes := make([]domain.DeviceOutcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		outcomes = append(outcomes, domain.DeviceOutcome{
			DeviceID: domain.DeviceID(o.DeviceID),
			Removed:  toDrivers(o.Removed),
			Inserted: toDrivers(o.Inserted),
			Aborted:  o.Aborted,
			Error:    o.Error,
		})
	}

	return domain.SyncRun{
		ID:         domain.ID(r.ID),
		Version:    r.Version,
		Kind:       domain.SyncRunKind(r.Kind),
		Status:     domain.SyncRunStatus(r.Status),
		DeviceIDs:  ids,
		Outcomes:   outcomes,
		Removed:    r.Removed,
		Inserted:   r.Inserted,
		Rows:       r.Rows,
		Error:      r.Error,
		CreatedAt:  utils.Time{Time: r.CreatedAt},
		StartedAt:  toTime(r.StartedAt),
		FinishedAt: toTime(r.FinishedAt),
	}
}

func fromDrivers(ids []domain.DriverID) []int64 {
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		result = append(result, int64(id))
	}
	return result
}

func toDrivers(ids []int64) []domain.DriverID {
	result := make([]domain.DriverID, 0, len(ids))
	for _, id := range ids {
		result = append(result, domain.DriverID(id))
	}
	return result
}

func fromTime(t *utils.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := t.Time
	return &value
}

func toTime(t *time.Time) *utils.Time {
	if t == nil {
		return nil
	}
	return &utils.Time{Time: *t}
}
