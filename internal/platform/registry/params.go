// internal/platform/registry/params.go
package registry

import (
	"fmt"
	"strconv"
	"time"
)

// Helpers type-safe para leer los parámetros de un worker (WorkerConfig.Params).
// Los valores llegan desde YAML (int, bool, []any), desde JSON (float64) o
// desde flags/env (string); todos caen al default si el tipo no encaja.

// StringParam returns params[key] as a non-empty string, or def.
func StringParam(params map[string]any, key, def string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return def
}

// IntParam accepts int, int64, float64 and numeric strings.
func IntParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// FloatParam accepts float64, int and numeric strings.
func FloatParam(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// BoolParam accepts bool and strconv.ParseBool strings.
func BoolParam(params map[string]any, key string, def bool) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// DurationParam accepts time.Duration, duration strings ("5s") and plain
// numbers, which are read as seconds.
func DurationParam(params map[string]any, key string, def time.Duration) time.Duration {
	switch v := params[key].(type) {
	case time.Duration:
		return v
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// StringsParam accepts []string and []any of strings. Any non-string item
// makes the whole value fall back to def.
func StringsParam(params map[string]any, key string, def []string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return def
			}
			out = append(out, s)
		}
		return out
	}
	return def
}

// IntsParam accepts []int and []any of numbers.
func IntsParam(params map[string]any, key string, def []int) []int {
	switch v := params[key].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for i := range v {
			n := IntParam(map[string]any{"n": v[i]}, "n", -1)
			if n < 0 {
				return def
			}
			out = append(out, n)
		}
		return out
	}
	return def
}

// ValidateRequiredString fails when value is empty.
func ValidateRequiredString(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required and cannot be empty", field)
	}
	return nil
}

// ValidatePositiveInt fails when value <= 0.
func ValidatePositiveInt(field string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %d", field, value)
	}
	return nil
}

// ValidateEnum fails when value is not one of allowed.
func ValidateEnum(field, value string, allowed []string) error {
	for _, option := range allowed {
		if value == option {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %s", field, allowed, value)
}
