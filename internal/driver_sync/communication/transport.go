package communication

import (
	"context"
	"net/url"
)

//go:generate mockgen -source=transport.go -destination=../../../test/unit/doubles/driver_sync/communication/transport_mock.go -package=communication -mock_names=Transport=MockTransport

// Transport performs one exchange with the tracking API and returns the
// decoded JSON body. Failures below the API envelope are *TransportError.
type Transport interface {
	SendRequest(ctx context.Context, path string, params url.Values) (any, error)
}

const (
	PathRequestDriverList = "sendCommandRequestIButtonList"
	PathDriverList        = "getIButtonList"
	PathRemoveDriver      = "sendCommandRemoveIButton"
	PathInsertDrivers     = "sendCommandInsertIButton"
	PathPendingCommands   = "getPendingCommands"
	PathEquipmentList     = "getEquipmentList"
)

const (
	ParamKey       = "key"
	ParamDeviceID  = "deviceId"
	ParamDriverID  = "driverId"
	ParamDriverIDs = "driverId[]"
	ParamCommandID = "commandId"
	ParamPage      = "page"
)
