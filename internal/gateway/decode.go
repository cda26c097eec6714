package gateway

import (
	"strconv"
	"strings"
)

// The server is loose with JSON types: the same field may arrive as a number,
// a numeric string or a boolean depending on version and plugin. These helpers
// accept all of them.

func getString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func getFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func getInt(m map[string]any, key string) int {
	return int(getFloat(m, key))
}

func getBool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v == "1" || strings.EqualFold(v, "true")
	}
	return false
}

func getLoop(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]any); ok {
			out = append(out, entry)
		}
	}
	return out
}

// hasKey distinguishes a missing field from a zero value
func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
