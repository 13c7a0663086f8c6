package steps

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"fleet-sync-server/test/functional/driver"

	"github.com/cucumber/godog"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// PaginatedResponse mirrors the paginated listing envelope of the API.
type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

type FeatureContext struct {
	app          *application
	apiDriver    *driver.APIDriver
	response     *http.Response
	responseData map[string]any
	runID        string
	run          map[string]any
	progress     *websocket.Conn
	messages     []map[string]any
	require      *require.Assertions
	t            godog.TestingT
}

func NewFeatureContext() *FeatureContext {
	return &FeatureContext{}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	// Generic steps
	ctx.Step(`^wait for (.*)$`, fc.waitForDuration)
	ctx.Then(`^the response status code should be (\d+)$`, fc.theResponseStatusCodeShouldBe)

	// Health steps
	ctx.When(`^I call the healthz endpoint$`, fc.iCallTheHealthzEndpoint)
	ctx.Then(`^the response should report success$`, fc.theResponseShouldReportSuccess)

	// Inventory steps
	ctx.Given(`^the tracking API lists the equipment:$`, fc.theTrackingAPIListsTheEquipment)
	ctx.Step(`^I run the inventory sync$`, fc.iRunTheInventorySync)
	ctx.Then(`^the run processed (\d+) rows$`, fc.theRunProcessedRows)
	ctx.Then(`^the device list contains the devices "([^"]*)"$`, fc.theDeviceListContainsTheDevices)
	ctx.Then(`^device (\d+) is listed with device id "([^"]*)" and plate "([^"]*)"$`, fc.deviceIsListedWithDeviceIDAndPlate)

	// Driver sync steps
	ctx.Given(`^device (\d+) stores the drivers "([^"]*)"$`, fc.deviceStoresTheDrivers)
	ctx.Given(`^device (\d+) stores no drivers$`, fc.deviceStoresNoDrivers)
	ctx.Given(`^the drivers "([^"]*)" are registered for device (\d+)$`, fc.theDriversAreRegisteredForDevice)
	ctx.Given(`^device (\d+) is out of radio range$`, fc.deviceIsOutOfRadioRange)
	ctx.Given(`^the tracking API rate limits the next (\d+) requests$`, fc.theTrackingAPIRateLimitsTheNextRequests)
	ctx.When(`^I start a driver sync for the devices "([^"]*)"$`, fc.iStartADriverSyncForTheDevices)
	ctx.When(`^I start a driver sync for every device$`, fc.iStartADriverSyncForEveryDevice)
	ctx.When(`^I follow the progress of the run$`, fc.iFollowTheProgressOfTheRun)
	ctx.Step(`^the run finishes with status "([^"]*)"$`, fc.theRunFinishesWithStatus)
	ctx.Then(`^the run removed (\d+) and inserted (\d+) drivers$`, fc.theRunRemovedAndInsertedDrivers)
	ctx.Then(`^device (\d+) stores exactly the drivers "([^"]*)"$`, fc.deviceStoresExactlyTheDrivers)
	ctx.Then(`^the tracking API received (\d+) "([^"]*)" requests$`, fc.theTrackingAPIReceivedRequests)
	ctx.Then(`^I receive progress until the run is finished$`, fc.iReceiveProgressUntilTheRunIsFinished)
	ctx.Then(`^the run is listed first$`, fc.theRunIsListedFirst)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.t = godog.T(ctx)
		fc.require = require.New(fc.t)

		fc.reset()
		app, err := startApplication()
		if err != nil {
			return ctx, fmt.Errorf("starting application: %w", err)
		}
		fc.app = app
		fc.apiDriver = driver.NewAPIDriver(app.URL())
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if fc.progress != nil {
			fc.progress.Close()
		}
		if fc.app != nil {
			fc.app.stop()
		}
		return ctx, err
	})
}

func (fc *FeatureContext) reset() {
	fc.app = nil
	fc.response = nil
	fc.responseData = nil
	fc.runID = ""
	fc.run = nil
	fc.progress = nil
	fc.messages = nil
}

func (fc *FeatureContext) decodeBody(body io.ReadCloser, target any) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(target)
}

func (fc *FeatureContext) decodePaginatedResponse(response *http.Response) ([]map[string]any, error) {
	var paginatedResp PaginatedResponse[map[string]any]
	if err := fc.decodeBody(response.Body, &paginatedResp); err != nil {
		return nil, fmt.Errorf("failed to decode paginated response: %w", err)
	}
	return paginatedResp.Data, nil
}
