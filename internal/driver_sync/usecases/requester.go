package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/logger"

	"github.com/cenkalti/backoff/v4"
)

// requester drives one logical request to a final classification: TryAgain
// answers are re-issued unchanged, with exponential backoff, until they turn
// into something else or the attempt budget runs out.
type requester struct {
	transport  communication.Transport
	classifier *communication.Classifier
	gate       *RateLimitGate
	pauser     Pauser
	settings   domain.SyncSettings
	logger     logger.Logger
}

func (r *requester) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.settings.RetryInitialInterval
	b.MaxInterval = r.settings.RetryMaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Do returns the final classification. Transport failures are classified as
// OutcomeAbort carrying the *communication.TransportError.
func (r *requester) Do(ctx context.Context, path string, params url.Values) communication.Classification {
	b := r.newBackOff()

	for attempt := 1; ; attempt++ {
		if err := r.gate.Wait(ctx, r.pauser); err != nil {
			return communication.Classification{Outcome: communication.OutcomeAbort, Err: err}
		}

		raw, err := r.transport.SendRequest(ctx, path, params)
		if err != nil {
			var transportErr *communication.TransportError
			if !errors.As(err, &transportErr) {
				err = &communication.TransportError{Path: path, Err: err}
			}
			r.logger.Errorw("tracking api request failed", "path", path, "attempt", attempt, "error", err)
			return communication.Classification{Outcome: communication.OutcomeAbort, Err: err}
		}

		result := r.classifier.Classify(path, raw)
		if result.Outcome != communication.OutcomeTryAgain {
			return result
		}

		if attempt >= r.settings.MaxAttempts {
			r.logger.Warnw("giving up on rate limited request", "path", path, "attempts", attempt)
			return communication.Classification{
				Outcome:  communication.OutcomeGoNext,
				Envelope: result.Envelope,
				Err:      fmt.Errorf("%w after %d attempts", communication.ErrRateLimited, attempt),
			}
		}

		wait := b.NextBackOff()
		r.logger.Infow("rate limited, retrying", "path", path, "attempt", attempt, "wait", wait)
		r.gate.Block(ctx, wait)
		if err := r.pauser.Pause(ctx, wait); err != nil {
			return communication.Classification{Outcome: communication.OutcomeAbort, Err: err}
		}
	}
}

// queueWaiter drives the QueuePoller until the command leaves the Repeat
// state or the poll budget runs out. Only transport failures and
// cancellation are returned as errors; every other Break proceeds.
type queueWaiter struct {
	poller   *communication.QueuePoller
	gate     *RateLimitGate
	pauser   Pauser
	settings domain.SyncSettings
	logger   logger.Logger
}

func (w *queueWaiter) Wait(ctx context.Context, device domain.Device, commandID string) (communication.QueueStatus, error) {
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(w.settings.QueuePollInterval), uint64(w.settings.MaxQueuePolls-1))

	for {
		if err := w.gate.Wait(ctx, w.pauser); err != nil {
			return communication.QueueBreak, err
		}

		status, err := w.poller.Poll(ctx, device.ID.String(), commandID)
		switch status {
		case communication.QueueContinue:
			w.logger.Debugw("command confirmed", "device_id", device.ID.String(), "command_id", commandID)
			return status, nil
		case communication.QueueBreak:
			if isTransportError(err) {
				return status, fmt.Errorf("polling command queue: %w", err)
			}
			w.logger.Warnw("proceeding without queue confirmation", "device_id", device.ID.String(), "command_id", commandID, "error", err)
			return status, nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			w.logger.Warnw("proceeding without queue confirmation", "device_id", device.ID.String(), "command_id", commandID,
				"error", fmt.Errorf("%w after %d polls", communication.ErrQueueTimeout, w.settings.MaxQueuePolls))
			return communication.QueueBreak, nil
		}
		if err := w.pauser.Pause(ctx, wait); err != nil {
			return communication.QueueBreak, err
		}
	}
}
