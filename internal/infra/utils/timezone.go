package utils

import (
	"fmt"
	"time"
)

// LoadTimezone resolves an IANA time zone name. An empty name is the local
// time zone of the process.
func LoadTimezone(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}

	return loc, nil
}
