package communication

import (
	"errors"
	"fmt"
	"slices"

	"fleet-sync-server/internal/logger"
)

// Outcome tells the caller what to do with one API response.
type Outcome int

const (
	// OutcomeAbort stops the current run: the response is not usable.
	OutcomeAbort Outcome = iota
	// OutcomeGoNext skips the current device or filter value.
	OutcomeGoNext
	// OutcomeProcess hands the response to the business step.
	OutcomeProcess
	// OutcomeTryAgain re-issues the identical request after a pause.
	OutcomeTryAgain
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAbort:
		return "abort"
	case OutcomeGoNext:
		return "go_next"
	case OutcomeProcess:
		return "process"
	case OutcomeTryAgain:
		return "try_again"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var _rateLimitMessages = []string{
	"Limite de acessos atingido (20 segundos)",
	"Limite de acessos atingido (1 minutos)",
}

// IsRateLimitMessage reports whether msg is one of the API rate limit errors.
func IsRateLimitMessage(msg string) bool {
	return slices.Contains(_rateLimitMessages, msg)
}

type Classification struct {
	Outcome  Outcome
	Envelope Envelope
	// Err is nil for OutcomeProcess and explains every other outcome.
	Err error
}

func (c Classification) Message() string {
	if c.Err != nil {
		return c.Err.Error()
	}
	return c.Envelope.Message
}

type Classifier struct {
	logger logger.Logger
}

func NewClassifier(log logger.Logger) *Classifier {
	return &Classifier{logger: log}
}

// Classify never fails: anything that does not look like an API envelope is
// classified as OutcomeAbort.
func (c *Classifier) Classify(path string, raw any) Classification {
	c.logger.Debugw("classifying api response", "path", path, "response", fmt.Sprintf("%+v", raw))

	envelope, err := ParseEnvelope(raw)
	if err != nil {
		c.logger.Errorw("malformed api response", "path", path, "error", err, "response", fmt.Sprintf("%+v", raw))
		return Classification{Outcome: OutcomeAbort, Envelope: envelope, Err: err}
	}

	if envelope.Success {
		return Classification{Outcome: OutcomeProcess, Envelope: envelope}
	}

	if envelope.Error == 0 {
		return Classification{
			Outcome:  OutcomeGoNext,
			Envelope: envelope,
			Err:      fmt.Errorf("%w: unsuccessful response without error code", ErrUnretryable),
		}
	}

	if IsRateLimitMessage(envelope.Message) {
		return Classification{
			Outcome:  OutcomeTryAgain,
			Envelope: envelope,
			Err:      fmt.Errorf("%w: %s", ErrRateLimited, envelope.Message),
		}
	}

	return Classification{
		Outcome:  OutcomeGoNext,
		Envelope: envelope,
		Err:      fmt.Errorf("%w: error %d: %s", ErrUnretryable, envelope.Error, envelope.Message),
	}
}

func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
