package internal

import (
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
)

type Device struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string `json:"name"`
	Plate     string `json:"plate"`
	OwnerID   int64  `json:"owner_id" gorm:"index"`
	UpdatedAt time.Time
}

func (Device) TableName() string {
	return "devices"
}

func (d Device) ToDomain() domain.Device {
	return domain.Device{
		ID:      domain.DeviceID(d.ID),
		Name:    d.Name,
		Plate:   d.Plate,
		OwnerID: domain.OwnerID(d.OwnerID),
	}
}

func FromDevice(device domain.Device) Device {
	return Device{
		ID:      int64(device.ID),
		Name:    device.Name,
		Plate:   device.Plate,
		OwnerID: int64(device.OwnerID),
	}
}

// RegisteredDriver is one entry of the authoritative driver list of an
// owner.
type RegisteredDriver struct {
	OwnerID  int64 `json:"owner_id" gorm:"primaryKey;autoIncrement:false"`
	DriverID int64 `json:"driver_id" gorm:"primaryKey;autoIncrement:false"`
}

func (RegisteredDriver) TableName() string {
	return "registered_drivers"
}
