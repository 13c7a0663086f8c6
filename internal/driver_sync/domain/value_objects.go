package domain

import "fmt"

const (
	_maxShortDeviceID DeviceID = 999999
)

type ID string

func (vo ID) String() string {
	return string(vo)
}

// DeviceID is the numeric identifier of a tracking unit. The tracking API
// expects it zero padded: six digits for short ids, nine digits otherwise.
type DeviceID int64

func (id DeviceID) String() string {
	if id > _maxShortDeviceID {
		return fmt.Sprintf("%09d", int64(id))
	}
	return fmt.Sprintf("%06d", int64(id))
}

// DriverID is the iButton identifier of a person allowed to operate a device.
type DriverID int64

func (id DriverID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

type OwnerID int64
