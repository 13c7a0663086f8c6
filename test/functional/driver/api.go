package driver

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type APIDriver struct {
	baseURL string
	client  *http.Client
}

func NewAPIDriver(baseURL string) *APIDriver {
	return &APIDriver{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (d *APIDriver) GetHealthz() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/healthz", d.baseURL))
}

func (d *APIDriver) ListDevices() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/v1/devices?limit=100", d.baseURL))
}

func (d *APIDriver) SetRegisteredDrivers(deviceID int64, driverIDs []int64) (*http.Response, error) {
	reqBody, err := json.Marshal(map[string]any{"driver_ids": driverIDs})
	if err != nil {
		panic(err)
	}
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/v1/devices/%d/drivers", d.baseURL, deviceID), bytes.NewBuffer(reqBody))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return d.client.Do(req)
}

func (d *APIDriver) StartInventorySync() (*http.Response, error) {
	return d.client.Post(fmt.Sprintf("%s/v1/devices/inventory-sync", d.baseURL), "application/json", nil)
}

func (d *APIDriver) StartDriverSync(deviceIDs []int64) (*http.Response, error) {
	reqBody, err := json.Marshal(map[string]any{"device_ids": deviceIDs})
	if err != nil {
		panic(err)
	}
	return d.client.Post(fmt.Sprintf("%s/v1/driver-sync/runs", d.baseURL), "application/json", bytes.NewBuffer(reqBody))
}

func (d *APIDriver) GetSyncRun(id string) (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/v1/driver-sync/runs/%s", d.baseURL, id))
}

func (d *APIDriver) ListSyncRuns() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/v1/driver-sync/runs", d.baseURL))
}

func (d *APIDriver) ConnectProgress(runID string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(d.baseURL, "http") + "/ws/driver-sync/runs/" + runID + "/progress"
	return websocket.DefaultDialer.Dial(url, nil)
}
