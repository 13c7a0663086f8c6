package internal

import "fleet-sync-server/internal/driver_sync/domain"

type DeviceResponse struct {
	ID       int64  `json:"id"`
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Plate    string `json:"plate,omitempty"`
	OwnerID  int64  `json:"owner_id,omitempty"`
}

func FromDevices(devices []domain.Device) []DeviceResponse {
	result := make([]DeviceResponse, 0, len(devices))
	for _, d := range devices {
		result = append(result, DeviceResponse{
			ID:       int64(d.ID),
			DeviceID: d.ID.String(),
			Name:     d.Name,
			Plate:    d.Plate,
			OwnerID:  int64(d.OwnerID),
		})
	}
	return result
}

type RegisteredDriversRequest struct {
	DriverIDs []int64 `json:"driver_ids"`
}

func (r RegisteredDriversRequest) ToDomain() []domain.DriverID {
	ids := make([]domain.DriverID, 0, len(r.DriverIDs))
	for _, id := range r.DriverIDs {
		ids = append(ids, domain.DriverID(id))
	}
	return ids
}
