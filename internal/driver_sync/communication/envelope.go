package communication

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Envelope is the validated shape shared by every tracking API response.
type Envelope struct {
	Success bool
	Error   int
	Message string
	Data    any
	Raw     any
}

// ParseEnvelope validates the mandatory fields of a decoded response:
// success (bool) and error (int) always, msg (string or list of strings)
// when error > 0 and data otherwise.
func ParseEnvelope(raw any) (Envelope, error) {
	body, ok := raw.(map[string]any)
	if !ok || len(body) == 0 {
		return Envelope{Raw: raw}, fmt.Errorf("%w: expected a non empty object, got %T", ErrMalformedResponse, raw)
	}

	success, ok := body["success"].(bool)
	if !ok {
		return Envelope{Raw: raw}, fmt.Errorf("%w: missing boolean success field", ErrMalformedResponse)
	}

	code, ok := asInt(body["error"])
	if !ok {
		return Envelope{Raw: raw}, fmt.Errorf("%w: missing integer error field", ErrMalformedResponse)
	}

	envelope := Envelope{Success: success, Error: code, Raw: raw}
	if code > 0 {
		message, ok := joinMessage(body["msg"])
		if !ok {
			return Envelope{Raw: raw}, fmt.Errorf("%w: error %d without msg", ErrMalformedResponse, code)
		}
		envelope.Message = message
		return envelope, nil
	}

	data, ok := body["data"]
	if !ok || data == nil {
		return Envelope{Raw: raw}, fmt.Errorf("%w: missing data field", ErrMalformedResponse)
	}
	envelope.Data = data

	return envelope, nil
}

func joinMessage(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.TrimSpace(strings.Join(parts, " ")), true
	case []string:
		return strings.TrimSpace(strings.Join(v, " ")), true
	default:
		return "", false
	}
}

// asInt accepts the integer encodings a JSON decoder may produce.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// asLooseInt also accepts numeric strings, which the API uses for ids.
func asLooseInt(value any) (int64, bool) {
	if s, ok := value.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	n, ok := asInt(value)
	return int64(n), ok
}

func firstField(row map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		if value, ok := row[name]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}
