// Package params holds the parameter map helpers shared by every
// algorithm: typed getters and the parsers for the CLI value argument.
package params

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ValueKey is the parameter that carries the operation's -v argument.
const ValueKey = "value"

var ErrMissingValue = errors.New("operation requires a value")

func Float(params map[string]interface{}, key string, fallback float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	}
	return fallback
}

func Int(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func String(params map[string]interface{}, key string, fallback string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return fallback
}

// Has reports whether key is set to a non-nil value.
func Has(params map[string]interface{}, key string) bool {
	v, ok := params[key]
	return ok && v != nil
}

// Merge returns a new map with overrides applied on top of base.
func Merge(base, overrides map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(overrides))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}

func ParseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissingValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return v, nil
}

func ParseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissingValue
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return int(v), nil
}

// ParseUint parses an unsigned integer that fits in bits.
func ParseUint(raw string, bits int) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissingValue
	}
	v, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid unsigned integer %q: %w", raw, err)
	}
	return v, nil
}
