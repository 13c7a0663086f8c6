package usecases_test

import (
	"context"
	"net/url"
	"sync"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
)

// scriptedTransport answers every request with the handler registered for
// its path and records the calls.
type scriptedTransport struct {
	mu       sync.Mutex
	handlers map[string]func(params url.Values) (any, error)
	calls    []call
}

type call struct {
	path   string
	params url.Values
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{handlers: map[string]func(url.Values) (any, error){}}
}

func (t *scriptedTransport) on(path string, handler func(params url.Values) (any, error)) *scriptedTransport {
	t.handlers[path] = handler
	return t
}

func (t *scriptedTransport) SendRequest(_ context.Context, path string, params url.Values) (any, error) {
	t.mu.Lock()
	t.calls = append(t.calls, call{path: path, params: params})
	handler, ok := t.handlers[path]
	t.mu.Unlock()
	if !ok {
		return ok200([]any{}), nil
	}
	return handler(params)
}

func (t *scriptedTransport) callsTo(path string) []call {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]call, 0)
	for _, c := range t.calls {
		if c.path == path {
			result = append(result, c)
		}
	}
	return result
}

var _ communication.Transport = &scriptedTransport{}

func ok200(data any) map[string]any {
	return map[string]any{"success": true, "error": float64(0), "data": data}
}

func apiError(code int, msg string) map[string]any {
	return map[string]any{"success": false, "error": float64(code), "msg": msg}
}

func rateLimited() map[string]any {
	return apiError(1, "Limite de acessos atingido (20 segundos)")
}

// recordingPauser never sleeps.
type recordingPauser struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (p *recordingPauser) Pause(ctx context.Context, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses = append(p.pauses, d)
	return ctx.Err()
}

func (p *recordingPauser) recorded() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.pauses...)
}

type progressRecorder struct {
	mu     sync.Mutex
	done   []float64
	totals []float64
	rows   []any
}

func (r *progressRecorder) report(done, total float64, _ string, row any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, done)
	r.totals = append(r.totals, total)
	if row != nil {
		r.rows = append(r.rows, row)
	}
}

func (r *progressRecorder) isMonotonic() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 1; i < len(r.done); i++ {
		if r.done[i] < r.done[i-1] {
			return false
		}
	}
	return true
}

func (r *progressRecorder) last() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.done) == 0 {
		return 0
	}
	return r.done[len(r.done)-1]
}
