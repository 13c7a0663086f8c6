package steps

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fleet-sync-server/test/functional/driver"

	"github.com/cucumber/godog"
)

func (fc *FeatureContext) theTrackingAPIListsTheEquipment(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("equipment table needs a header and at least one row")
	}

	header := map[string]int{}
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}

	for _, row := range table.Rows[1:] {
		value := func(column string) string {
			index, ok := header[column]
			if !ok {
				return ""
			}
			return strings.TrimSpace(row.Cells[index].Value)
		}

		id, err := strconv.ParseInt(value("id"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid equipment id: %w", err)
		}
		client, _ := strconv.ParseInt(value("client"), 10, 64)
		fc.app.tracking.AddEquipment(driver.Equipment{
			ID:       id,
			Name:     value("name"),
			Plate:    value("plate"),
			ClientID: client,
		})
	}
	return nil
}

func (fc *FeatureContext) iRunTheInventorySync() error {
	response, err := fc.apiDriver.StartInventorySync()
	if err != nil {
		return err
	}
	fc.response = response
	fc.require.Equal(http.StatusAccepted, response.StatusCode)

	var data map[string]any
	fc.require.NoError(fc.decodeBody(response.Body, &data))
	fc.require.Equal("inventory", data["kind"])
	fc.runID = data["id"].(string)
	return nil
}

func (fc *FeatureContext) theRunProcessedRows(rows int) error {
	fc.require.NotNil(fc.run, "the run must be finished first")
	fc.require.EqualValues(rows, fc.run["rows"])
	return nil
}

func (fc *FeatureContext) listDevices() ([]map[string]any, error) {
	response, err := fc.apiDriver.ListDevices()
	if err != nil {
		return nil, err
	}
	fc.require.Equal(http.StatusOK, response.StatusCode)
	return fc.decodePaginatedResponse(response)
}

func (fc *FeatureContext) theDeviceListContainsTheDevices(list string) error {
	devices, err := fc.listDevices()
	if err != nil {
		return err
	}

	listed := make([]string, 0, len(devices))
	for _, device := range devices {
		listed = append(listed, device["device_id"].(string))
	}

	expected := []string{}
	for _, id := range strings.Split(list, ",") {
		expected = append(expected, strings.TrimSpace(id))
	}
	fc.require.ElementsMatch(expected, listed)
	return nil
}

func (fc *FeatureContext) deviceIsListedWithDeviceIDAndPlate(id int64, deviceID, plate string) error {
	devices, err := fc.listDevices()
	if err != nil {
		return err
	}

	for _, device := range devices {
		if int64(device["id"].(float64)) != id {
			continue
		}
		fc.require.Equal(deviceID, device["device_id"])
		fc.require.Equal(plate, device["plate"])
		return nil
	}
	return fmt.Errorf("device %d is not listed", id)
}
