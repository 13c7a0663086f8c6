package domain

import "time"

// CommandQueueEntry mirrors a pending command as reported by the tracking
// API. SendDate stays nil until the device receives the command and
// ConfirmDate until the device acknowledges it.
type CommandQueueEntry struct {
	CommandID   string
	RequestDate *time.Time
	SendDate    *time.Time
	ConfirmDate *time.Time
}

func (e CommandQueueEntry) IsSent() bool {
	return e.SendDate != nil
}

func (e CommandQueueEntry) IsConfirmed() bool {
	return e.ConfirmDate != nil
}

// AwaitingConfirmationFor returns how long the device has held the command
// without acknowledging it.
func (e CommandQueueEntry) AwaitingConfirmationFor(now time.Time) time.Duration {
	if e.SendDate == nil {
		return 0
	}
	return now.Sub(*e.SendDate)
}
