package communication

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fleet-sync-server/internal/logger"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

const _breakerName = "tracking-api"

type HTTPTransportConfig struct {
	BaseURL           string
	Key               string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// HTTPTransport posts form encoded requests to the tracking API. Every
// request carries the account key and goes through a client side limiter
// and a circuit breaker.
type HTTPTransport struct {
	baseURL  string
	key      string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[any]
	logger   logger.Logger
	requests metric.Int64Counter
}

var _ Transport = &HTTPTransport{}

func NewHTTPTransport(cfg HTTPTransportConfig, log logger.Logger) (*HTTPTransport, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("tracking api base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	requests, err := otel.Meter("fleet-sync-server").Int64Counter(
		"tracking_api_requests_total",
		metric.WithDescription("Requests sent to the tracking API"),
	)
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        _breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// API envelopes with error codes are answers, not failures.
		IsSuccessful: func(err error) bool {
			var transportErr *TransportError
			return err == nil || !errors.As(err, &transportErr) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &HTTPTransport{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		key:      cfg.Key,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(limit, cfg.Burst),
		breaker:  breaker,
		logger:   log,
		requests: requests,
	}, nil
}

func (t *HTTPTransport) SendRequest(ctx context.Context, path string, params url.Values) (any, error) {
	ctx, span := otel.Tracer("fleet-sync-server").Start(ctx, "tracking_api."+path)
	defer span.End()

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	result, err := t.breaker.Execute(func() (any, error) {
		return t.do(ctx, path, params)
	})

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			err = &TransportError{Path: path, Err: err}
		}
	}
	t.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", status),
	))

	return result, err
}

func (t *HTTPTransport) do(ctx context.Context, path string, params url.Values) (any, error) {
	form := url.Values{}
	for name, values := range params {
		form[name] = append([]string(nil), values...)
	}
	form.Set(ParamKey, t.key)

	endpoint := fmt.Sprintf("%s/%s", t.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	t.logger.Debugw("sending tracking api request", "path", path, "params", params.Encode())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	var decoded any
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&decoded); err != nil {
		return nil, &TransportError{Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding body: %w", err)}
	}

	return decoded, nil
}
