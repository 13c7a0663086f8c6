package steps

import (
	"fmt"
	"net/http"
	"time"
)

const (
	_runTimeout      = 10 * time.Second
	_runPollInterval = 25 * time.Millisecond
)

func (fc *FeatureContext) deviceStoresTheDrivers(deviceID int64, list string) error {
	ids, err := parseIDs(list)
	if err != nil {
		return err
	}
	fc.app.tracking.StoreDrivers(trackingID(deviceID), ids...)
	return nil
}

func (fc *FeatureContext) deviceStoresNoDrivers(deviceID int64) error {
	fc.app.tracking.StoreDrivers(trackingID(deviceID))
	return nil
}

func (fc *FeatureContext) theDriversAreRegisteredForDevice(list string, deviceID int64) error {
	ids, err := parseIDs(list)
	if err != nil {
		return err
	}
	response, err := fc.apiDriver.SetRegisteredDrivers(deviceID, ids)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	fc.require.Equal(http.StatusNoContent, response.StatusCode)
	return nil
}

func (fc *FeatureContext) deviceIsOutOfRadioRange(deviceID int64) error {
	fc.app.tracking.SetOffline(trackingID(deviceID))
	return nil
}

func (fc *FeatureContext) theTrackingAPIRateLimitsTheNextRequests(n int) error {
	fc.app.tracking.RateLimitNext(n)
	return nil
}

func (fc *FeatureContext) iStartADriverSyncForTheDevices(list string) error {
	ids, err := parseIDs(list)
	if err != nil {
		return err
	}
	return fc.startDriverSync(ids)
}

func (fc *FeatureContext) iStartADriverSyncForEveryDevice() error {
	return fc.startDriverSync(nil)
}

func (fc *FeatureContext) startDriverSync(ids []int64) error {
	response, err := fc.apiDriver.StartDriverSync(ids)
	if err != nil {
		return err
	}
	fc.response = response
	if response.StatusCode != http.StatusAccepted {
		return nil
	}

	var data map[string]any
	fc.require.NoError(fc.decodeBody(response.Body, &data))
	fc.require.Equal("drivers", data["kind"])
	fc.runID = data["id"].(string)
	return nil
}

func (fc *FeatureContext) theRunFinishesWithStatus(status string) error {
	fc.require.NotEmpty(fc.runID, "no run was started")

	deadline := time.Now().Add(_runTimeout)
	for time.Now().Before(deadline) {
		response, err := fc.apiDriver.GetSyncRun(fc.runID)
		if err != nil {
			return err
		}
		fc.require.Equal(http.StatusOK, response.StatusCode)

		var run map[string]any
		fc.require.NoError(fc.decodeBody(response.Body, &run))
		if run["status"] == "finished" || run["status"] == "failed" {
			fc.run = run
			fc.require.Equal(status, run["status"], "run error: %v", run["error"])
			return nil
		}
		time.Sleep(_runPollInterval)
	}
	return fmt.Errorf("run %s did not finish within %s", fc.runID, _runTimeout)
}

func (fc *FeatureContext) theRunRemovedAndInsertedDrivers(removed, inserted int) error {
	fc.require.NotNil(fc.run, "the run must be finished first")
	fc.require.EqualValues(removed, fc.run["removed"])
	fc.require.EqualValues(inserted, fc.run["inserted"])
	return nil
}

func (fc *FeatureContext) deviceStoresExactlyTheDrivers(deviceID int64, list string) error {
	expected, err := parseIDs(list)
	if err != nil {
		return err
	}
	fc.require.Equal(expected, fc.app.tracking.StoredDrivers(trackingID(deviceID)))
	return nil
}

func (fc *FeatureContext) theTrackingAPIReceivedRequests(n int, path string) error {
	fc.require.Equal(n, fc.app.tracking.Calls(path))
	return nil
}

func (fc *FeatureContext) iFollowTheProgressOfTheRun() error {
	conn, _, err := fc.apiDriver.ConnectProgress(fc.runID)
	if err != nil {
		return err
	}
	fc.progress = conn
	return nil
}

func (fc *FeatureContext) iReceiveProgressUntilTheRunIsFinished() error {
	fc.require.NotNil(fc.progress, "not following any run")
	fc.progress.SetReadDeadline(time.Now().Add(_runTimeout))

	last := -1.0
	for {
		var message map[string]any
		if err := fc.progress.ReadJSON(&message); err != nil {
			return fmt.Errorf("reading progress: %w", err)
		}
		fc.messages = append(fc.messages, message)
		fc.require.Equal(fc.runID, message["run_id"])

		percent := message["percent"].(float64)
		fc.require.GreaterOrEqual(percent, last, "progress must not go backwards")
		last = percent

		if message["type"] == "finished" {
			run := message["run"].(map[string]any)
			fc.require.Equal("finished", run["status"])
			fc.require.Equal(100.0, percent)
			return nil
		}
	}
}

func (fc *FeatureContext) theRunIsListedFirst() error {
	response, err := fc.apiDriver.ListSyncRuns()
	if err != nil {
		return err
	}
	fc.require.Equal(http.StatusOK, response.StatusCode)

	runs, err := fc.decodePaginatedResponse(response)
	if err != nil {
		return err
	}
	fc.require.NotEmpty(runs)
	fc.require.Equal(fc.runID, runs[0]["id"])
	return nil
}
