package domain

import "time"

const (
	// DefaultQueueConfirmationWindow is how long a sent command may stay
	// unconfirmed before the device is assumed out of radio range.
	DefaultQueueConfirmationWindow = 2 * time.Minute
	// DefaultWaitAfterListRequest is the time a device needs to report its
	// stored driver list after being asked for it.
	DefaultWaitAfterListRequest = 4 * time.Minute
	DefaultInsertPageSize       = 20
	DefaultMaxAttempts          = 10
	DefaultRetryInitialInterval = 20 * time.Second
	DefaultRetryMaxInterval     = time.Minute
	DefaultQueuePollInterval    = 20 * time.Second
	DefaultMaxQueuePolls        = 30
)

type SyncSettings struct {
	QueueConfirmationWindow time.Duration
	WaitAfterListRequest    time.Duration
	InsertPageSize          int
	MaxAttempts             int
	RetryInitialInterval    time.Duration
	RetryMaxInterval        time.Duration
	QueuePollInterval       time.Duration
	MaxQueuePolls           int
	// APILocation is the time zone the tracking API writes its dates in.
	APILocation *time.Location
}

func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		QueueConfirmationWindow: DefaultQueueConfirmationWindow,
		WaitAfterListRequest:    DefaultWaitAfterListRequest,
		InsertPageSize:          DefaultInsertPageSize,
		MaxAttempts:             DefaultMaxAttempts,
		RetryInitialInterval:    DefaultRetryInitialInterval,
		RetryMaxInterval:        DefaultRetryMaxInterval,
		QueuePollInterval:       DefaultQueuePollInterval,
		MaxQueuePolls:           DefaultMaxQueuePolls,
		APILocation:             time.Local,
	}
}

// WithDefaults fills every unset field with its default value.
func (s SyncSettings) WithDefaults() SyncSettings {
	defaults := DefaultSyncSettings()
	if s.QueueConfirmationWindow <= 0 {
		s.QueueConfirmationWindow = defaults.QueueConfirmationWindow
	}
	if s.WaitAfterListRequest < 0 {
		s.WaitAfterListRequest = defaults.WaitAfterListRequest
	}
	if s.InsertPageSize <= 0 {
		s.InsertPageSize = defaults.InsertPageSize
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = defaults.MaxAttempts
	}
	if s.RetryInitialInterval <= 0 {
		s.RetryInitialInterval = defaults.RetryInitialInterval
	}
	if s.RetryMaxInterval < s.RetryInitialInterval {
		s.RetryMaxInterval = s.RetryInitialInterval
	}
	if s.QueuePollInterval <= 0 {
		s.QueuePollInterval = defaults.QueuePollInterval
	}
	if s.MaxQueuePolls <= 0 {
		s.MaxQueuePolls = defaults.MaxQueuePolls
	}
	if s.APILocation == nil {
		s.APILocation = defaults.APILocation
	}
	return s
}
