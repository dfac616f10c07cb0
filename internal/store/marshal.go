package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/otioremap/internal/canon"
)

// marshalData converts plain data to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalData(what string, data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := canon.MarshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return string(b), nil
}

// unmarshalData parses stored JSON TEXT. Numbers are kept as json.Number so
// integers beyond 2^53 survive.
func unmarshalData(what, data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return obj, nil
}
