package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var listEnvelopes = []string{"results", "data", "items"}

// decodeList splits a list payload into its elements. It accepts a bare
// array or an object wrapping the array under a common envelope key.
func decodeList(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	for _, key := range listEnvelopes {
		if raw, ok := env[key]; ok {
			if isNull(raw) {
				return nil, nil
			}
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("decode list %q: %w", key, err)
			}
			return items, nil
		}
	}
	return nil, fmt.Errorf("decode list: no array found")
}
