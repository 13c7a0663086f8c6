package internal

import (
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/infra/utils"
)

type SyncRunCreateRequest struct {
	DeviceIDs []int64 `json:"device_ids"`
}

func (r SyncRunCreateRequest) ToDomain() []domain.DeviceID {
	ids := make([]domain.DeviceID, 0, len(r.DeviceIDs))
	for _, id := range r.DeviceIDs {
		ids = append(ids, domain.DeviceID(id))
	}
	return ids
}

type SyncRunResponse struct {
	ID         string                  `json:"id"`
	Kind       string                  `json:"kind"`
	Status     string                  `json:"status"`
	DeviceIDs  []string                `json:"device_ids"`
	Removed    int                     `json:"removed"`
	Inserted   int                     `json:"inserted"`
	Rows       int                     `json:"rows"`
	Error      string                  `json:"error,omitempty"`
	Outcomes   []DeviceOutcomeResponse `json:"outcomes"`
	CreatedAt  utils.Time              `json:"created_at"`
	StartedAt  *utils.Time             `json:"started_at,omitempty"`
	FinishedAt *utils.Time             `json:"finished_at,omitempty"`
}

type DeviceOutcomeResponse struct {
	DeviceID string  `json:"device_id"`
	Removed  []int64 `json:"removed"`
	Inserted []int64 `json:"inserted"`
	Aborted  bool    `json:"aborted"`
	Error    string  `json:"error,omitempty"`
}

func FromSyncRun(run domain.SyncRun) SyncRunResponse {
	ids := make([]string, 0, len(run.DeviceIDs))
	for _, id := range run.DeviceIDs {
		ids = append(ids, id.String())
	}

	outcomes := make([]DeviceOutcomeResponse, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		outcomes = append(outcomes, DeviceOutcomeResponse{
			DeviceID: o.DeviceID.String(),
			Removed:  fromDrivers(o.Removed),
			Inserted: fromDrivers(o.Inserted),
			Aborted:  o.Aborted,
			Error:    o.Error,
		})
	}

	return SyncRunResponse{
		ID:         run.ID.String(),
		Kind:       string(run.Kind),
		Status:     string(run.Status),
		DeviceIDs:  ids,
		Removed:    run.Removed,
		Inserted:   run.Inserted,
		Rows:       run.Rows,
		Error:      run.Error,
		Outcomes:   outcomes,
		CreatedAt:  run.CreatedAt,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

func FromSyncRuns(runs []domain.SyncRun) []SyncRunResponse {
	result := make([]SyncRunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, FromSyncRun(run))
	}
	return result
}

func fromDrivers(ids []domain.DriverID) []int64 {
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		result = append(result, int64(id))
	}
	return result
}

// ProgressMessage is written to progress websocket clients.
type ProgressMessage struct {
	Type    string           `json:"type"`
	RunID   string           `json:"run_id"`
	Done    float64          `json:"done"`
	Total   float64          `json:"total"`
	Percent float64          `json:"percent"`
	Label   string           `json:"label,omitempty"`
	Run     *SyncRunResponse `json:"run,omitempty"`
}

func FromProgressEvent(event domain.ProgressEvent) ProgressMessage {
	percent := 0.0
	if event.Total > 0 {
		percent = event.Done / event.Total * 100
	}
	return ProgressMessage{
		Type:    "progress",
		RunID:   event.RunID.String(),
		Done:    event.Done,
		Total:   event.Total,
		Percent: percent,
		Label:   event.Label,
	}
}

func FinishedMessage(run domain.SyncRun) ProgressMessage {
	response := FromSyncRun(run)
	return ProgressMessage{
		Type:    "finished",
		RunID:   run.ID.String(),
		Done:    1,
		Total:   1,
		Percent: 100,
		Run:     &response,
	}
}
