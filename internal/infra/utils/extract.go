package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/thoas/go-funk"
)

// ExtractStringValue reads a property, possibly a dotted path, from a map or
// struct and formats non string values.
func ExtractStringValue(msg any, propertyName string) string {
	if propertyName == "" {
		return ""
	}

	value := funk.Get(msg, propertyName)
	if value != nil {
		if strVal, ok := value.(string); ok {
			return strVal
		}
		return fmt.Sprintf("%v", value)
	}

	return ""
}

// ExtractIntValue extracts an integer value, accepting JSON numbers and
// numeric strings.
func ExtractIntValue(msg any, propertyName string) (int64, bool) {
	if propertyName == "" {
		return 0, false
	}

	switch v := funk.Get(msg, propertyName).(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
