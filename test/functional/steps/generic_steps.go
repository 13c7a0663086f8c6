package steps

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
)

func (fc *FeatureContext) waitForDuration(duration string) error {
	d, err := time.ParseDuration(strings.TrimSpace(duration))
	if err != nil {
		return err
	}
	time.Sleep(d)
	return nil
}

func (fc *FeatureContext) theResponseStatusCodeShouldBe(code int) error {
	fc.require.Equal(code, fc.response.StatusCode, "Unexpected status code")
	return nil
}

// parseIDs reads a comma separated list such as "11, 12, 13".
func parseIDs(list string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// trackingID is how the tracking API knows a device.
func trackingID(deviceID int64) string {
	return domain.DeviceID(deviceID).String()
}
