package communication

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/logger"
)

// QueueStatus is the verdict of one look at the device command queue.
type QueueStatus int

const (
	// QueueRepeat means the command is still travelling: ask again later.
	QueueRepeat QueueStatus = iota
	// QueueContinue means the command was confirmed or left the queue.
	QueueContinue
	// QueueBreak means the device will not answer in time.
	QueueBreak
)

func (s QueueStatus) String() string {
	switch s {
	case QueueRepeat:
		return "repeat"
	case QueueContinue:
		return "continue"
	case QueueBreak:
		return "break"
	default:
		return fmt.Sprintf("queue_status(%d)", int(s))
	}
}

type QueuePoller struct {
	transport Transport
	logger    logger.Logger
	window    time.Duration
	location  *time.Location
	now       func() time.Time
}

func NewQueuePoller(transport Transport, log logger.Logger, window time.Duration) *QueuePoller {
	return &QueuePoller{
		transport: transport,
		logger:    log,
		window:    window,
		location:  time.Local,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to measure the confirmation window.
func (p *QueuePoller) WithClock(now func() time.Time) *QueuePoller {
	p.now = now
	return p
}

// WithLocation sets the time zone of the dates reported by the queue.
func (p *QueuePoller) WithLocation(loc *time.Location) *QueuePoller {
	if loc != nil {
		p.location = loc
	}
	return p
}

// Poll looks once at the queue of deviceID and decides what the task that
// issued commandID should do next.
func (p *QueuePoller) Poll(ctx context.Context, deviceID, commandID string) (QueueStatus, error) {
	params := url.Values{}
	params.Set(ParamDeviceID, deviceID)
	if commandID != "" {
		params.Set(ParamCommandID, commandID)
	}

	raw, err := p.transport.SendRequest(ctx, PathPendingCommands, params)
	if err != nil {
		p.logger.Errorw("command queue request failed", "device_id", deviceID, "command_id", commandID, "error", err)
		return QueueBreak, err
	}

	return p.Evaluate(deviceID, commandID, raw)
}

// Evaluate applies the queue rules to an already received response.
func (p *QueuePoller) Evaluate(deviceID, commandID string, raw any) (QueueStatus, error) {
	envelope, err := ParseEnvelope(raw)
	if err != nil {
		p.logger.Errorw("malformed command queue response", "device_id", deviceID, "error", err)
		return QueueBreak, err
	}

	if envelope.Error > 0 {
		if IsRateLimitMessage(envelope.Message) {
			p.logger.Debugw("command queue rate limited", "device_id", deviceID, "message", envelope.Message)
			return QueueRepeat, nil
		}
		p.logger.Warnw("command queue answered with error", "device_id", deviceID, "error", envelope.Error, "message", envelope.Message)
		return QueueBreak, fmt.Errorf("%w: error %d: %s", ErrUnretryable, envelope.Error, envelope.Message)
	}

	if !envelope.Success {
		return QueueBreak, fmt.Errorf("%w: unsuccessful queue response", ErrUnretryable)
	}

	entries, err := QueueEntriesFromData(envelope.Data, p.location)
	if err != nil {
		if isEmptyData(envelope.Data) {
			return QueueContinue, nil
		}
		p.logger.Errorw("invalid command queue data", "device_id", deviceID, "error", err)
		return QueueBreak, err
	}

	entry, found := pickEntry(entries, commandID)
	if !found {
		return QueueContinue, nil
	}

	if !entry.IsSent() {
		p.logger.Debugw("command not yet sent to device", "device_id", deviceID, "command_id", entry.CommandID)
		return QueueRepeat, nil
	}

	if !entry.IsConfirmed() {
		waiting := entry.AwaitingConfirmationFor(p.now())
		if waiting < p.window {
			p.logger.Debugw("command waiting for confirmation", "device_id", deviceID, "command_id", entry.CommandID, "waiting", waiting)
			return QueueRepeat, nil
		}
		p.logger.Warnw("device did not confirm command", "device_id", deviceID, "command_id", entry.CommandID, "waiting", waiting)
		return QueueBreak, ErrQueueTimeout
	}

	return QueueContinue, nil
}

func pickEntry(entries []domain.CommandQueueEntry, commandID string) (domain.CommandQueueEntry, bool) {
	if len(entries) == 0 {
		return domain.CommandQueueEntry{}, false
	}
	if commandID == "" {
		return entries[0], true
	}
	for _, entry := range entries {
		if entry.CommandID == commandID || entry.CommandID == "" {
			return entry, true
		}
	}
	return domain.CommandQueueEntry{}, false
}

func isEmptyData(data any) bool {
	switch v := data.(type) {
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case string:
		return v == ""
	default:
		return false
	}
}

// IsQueueTimeout reports whether err comes from an unconfirmed command.
func IsQueueTimeout(err error) bool {
	return errors.Is(err, ErrQueueTimeout)
}
