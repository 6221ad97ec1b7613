package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// marshalVector converts a vector to JSON TEXT for storage.
func marshalVector(v []float32) (string, error) {
	if v == nil {
		v = []float32{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal vector: %w", err)
	}
	return string(data), nil
}

// unmarshalVector parses a vector column.
func unmarshalVector(text string) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal vector: %w", err)
	}
	return v, nil
}

// aliasSep separates aliases in a group_concat column (ASCII unit separator).
const aliasSep = "\x1f"

// splitAliases parses a group_concat alias column into a sorted list.
func splitAliases(col string) []string {
	if col == "" {
		return nil
	}
	out := strings.Split(col, aliasSep)
	slices.Sort(out)
	return out
}

// embeddingText is the text embedded for an entity.
func embeddingText(label string, aliases []string) string {
	if len(aliases) == 0 {
		return label
	}
	return label + " " + strings.Join(aliases, " ")
}
