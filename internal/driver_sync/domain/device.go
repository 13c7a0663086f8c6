package domain

import "errors"

type Device struct {
	ID      DeviceID
	Name    string
	Plate   string
	OwnerID OwnerID
}

func NewDeviceBuilder() *deviceBuilder {
	return &deviceBuilder{}
}

type deviceBuilder struct {
	actions []deviceHandler
}

type deviceHandler func(v *Device) error

func (b *deviceBuilder) WithID(value DeviceID) *deviceBuilder {
	b.actions = append(b.actions, func(d *Device) error {
		if value <= 0 {
			return errors.New("device id must be positive")
		}
		d.ID = value
		return nil
	})
	return b
}

func (b *deviceBuilder) WithName(value string) *deviceBuilder {
	b.actions = append(b.actions, func(d *Device) error {
		d.Name = value
		return nil
	})
	return b
}

func (b *deviceBuilder) WithPlate(value string) *deviceBuilder {
	b.actions = append(b.actions, func(d *Device) error {
		d.Plate = value
		return nil
	})
	return b
}

func (b *deviceBuilder) WithOwnerID(value OwnerID) *deviceBuilder {
	b.actions = append(b.actions, func(d *Device) error {
		d.OwnerID = value
		return nil
	})
	return b
}

func (b *deviceBuilder) Build() (Device, error) {
	result := Device{}
	for _, a := range b.actions {
		if err := a(&result); err != nil {
			return Device{}, err
		}
	}

	if result.ID == 0 {
		return Device{}, errors.New("device id is required")
	}

	if result.Name == "" {
		result.Name = result.ID.String()
	}

	return result, nil
}

// DriverOwner is the owner whose driver list applies to the device. Devices
// without an owner keep a list of their own.
func (d Device) DriverOwner() OwnerID {
	if d.OwnerID > 0 {
		return d.OwnerID
	}
	return OwnerID(d.ID)
}
