package store

import (
	"encoding/json"
	"fmt"
)

// EncodeMetadata renders a metadata map as the JSON text stored in metadata
// columns. A nil map is stored as "{}".
func EncodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(b), nil
}

// DecodeMetadata parses a metadata column. Empty objects decode to nil.
func DecodeMetadata(s string) (map[string]any, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return m, nil
}

// BoolInt maps a flag to the 0/1 integer stored in flag columns.
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
