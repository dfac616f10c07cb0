package otio

import (
	"math"
	"strconv"
)

// Metadata is free-form data attached to schema objects.
// Values are whatever the document decoder produced: string, bool, int,
// int64, float64, []any or map[string]any.
type Metadata map[string]any

// Clone returns a shallow copy. A nil Metadata clones to an empty map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Float returns the numeric value stored at key.
func (m Metadata) Float(key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Int returns the numeric value stored at key truncated to an int.
func (m Metadata) Int(key string) (int, bool) {
	f, ok := m.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// FloatSlice returns key as a list of numbers.
// A single number is returned as a one-element list.
func (m Metadata) FloatSlice(key string) ([]float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	if f, ok := ToFloat(v); ok {
		return []float64{f}, true
	}

	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []float64:
		return append([]float64(nil), list...), true
	case []int:
		out := make([]float64, len(list))
		for i, n := range list {
			out[i] = float64(n)
		}
		return out, true
	default:
		return nil, false
	}

	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := ToFloat(item)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// Truthy reports whether key holds a value that is not zero, empty or false.
func (m Metadata) Truthy(key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	if f, ok := ToFloat(v); ok {
		return f != 0
	}
	return true
}

// ToFloat converts decoded numeric values to float64.
// Numeric strings are accepted since some exporters quote padding values.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
