package normalize

import (
	"encoding/json"
	"fmt"
)

// field maps one canonical wire name to every spelling seen in the wild.
// Earlier aliases win when a payload carries more than one.
type field struct {
	canonical string
	aliases   []string
}

// canonicalize decodes a JSON object and renames known aliases to their
// canonical names. Unknown keys are dropped.
func canonicalize(body []byte, fields []field) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	out := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		for _, alias := range f.aliases {
			if v, ok := raw[alias]; ok && !isNull(v) {
				out[f.canonical] = v
				break
			}
		}
	}
	return out, nil
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || string(v) == "null"
}

// decodeCanonical renames aliases and decodes the result into dst.
func decodeCanonical(body []byte, fields []field, dst any) (map[string]json.RawMessage, error) {
	m, err := canonicalize(body, fields)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return m, nil
}

// merge overlays patch on base. Keys listed in groups are replaced as a unit:
// when the patch sets any key of a group, the base values of the whole group
// are dropped first.
func merge(base, patch map[string]json.RawMessage, groups ...[]string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for _, group := range groups {
		touched := false
		for _, k := range group {
			if _, ok := patch[k]; ok {
				touched = true
				break
			}
		}
		if touched {
			for _, k := range group {
				delete(out, k)
			}
		}
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// toMap renders a canonical wire value back into a key/value object.
func toMap(v any) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
