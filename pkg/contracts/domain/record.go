package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one raw demo-board item as returned by the reporting API.
// The remote side enforces no schema, so every accessor returns a zero
// value for missing or mistyped fields instead of failing.
type Record map[string]interface{}

// String returns the field rendered as a string, or "" when absent
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Float returns the field as a number. The boolean is false when the field
// is missing or cannot be read as a number.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Strings returns a list-valued field as strings. Non-string elements are
// rendered with fmt, nulls are skipped, and a scalar string becomes a
// single-element list.
func (r Record) Strings(key string) []string {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

// Object returns a nested object field. Missing or non-object values yield an
// empty Record so lookups can be chained.
func (r Record) Object(key string) Record {
	v, ok := r[key]
	if !ok || v == nil {
		return Record{}
	}
	switch val := v.(type) {
	case map[string]interface{}:
		return Record(val)
	case Record:
		return val
	default:
		return Record{}
	}
}
