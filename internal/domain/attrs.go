package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attrs is a free-form attribute bag as received from callers or providers
type Attrs map[string]any

// Clone returns a shallow copy, never nil
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// String returns the trimmed string value of key, or "" when absent or not scalar
func (a Attrs) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// FirstString returns the first non-empty string among keys
func (a Attrs) FirstString(keys ...string) string {
	for _, k := range keys {
		if s := a.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Float returns the numeric value of key, or nil when absent or not numeric
func (a Attrs) Float(key string) *float64 {
	v, ok := a[key]
	if !ok || v == nil {
		return nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// Map returns the nested attribute bag stored under key
func (a Attrs) Map(key string) Attrs {
	switch t := a[key].(type) {
	case Attrs:
		return t
	case map[string]any:
		return Attrs(t)
	default:
		return nil
	}
}

// Merge returns the shallow union of a and incoming; incoming keys override
func (a Attrs) Merge(incoming Attrs) Attrs {
	out := a.Clone()
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

// MergeNonEmpty is Merge that skips nil and blank incoming values
func (a Attrs) MergeNonEmpty(incoming Attrs) Attrs {
	out := a.Clone()
	for k, v := range incoming {
		if IsEmptyValue(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsEmptyValue reports nil, blank strings and empty collections
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Attrs:
		return len(t) == 0
	}
	return false
}

// MarshalAttrs encodes attrs for storage; nil becomes "{}"
func MarshalAttrs(a Attrs) (string, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal attrs: %w", err)
	}
	return string(b), nil
}

// UnmarshalAttrs decodes stored attrs; empty input yields an empty bag
func UnmarshalAttrs(raw []byte) (Attrs, error) {
	out := Attrs{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return out, nil
}
