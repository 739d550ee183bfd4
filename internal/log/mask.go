package log

import (
	"fmt"
	"sort"
	"strings"
)

// sensitiveKeys are substrings that mark a config key as secret.
var sensitiveKeys = []string{"client_secret", "password", "token", "secret", "key"}

// MaskSensitive returns a copy of values with secret-looking entries masked.
// Strings longer than four characters keep their first four characters.
// Nested maps are masked recursively.
func MaskSensitive(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if nested, ok := v.(map[string]any); ok {
			out[k] = MaskSensitive(nested)
			continue
		}
		if !isSensitive(k) {
			out[k] = v
			continue
		}
		if s, ok := v.(string); ok && len(s) > 4 {
			out[k] = s[:4] + "***"
		} else {
			out[k] = "***"
		}
	}
	return out
}

// FormatFields renders a map as sorted key=value pairs for a single log line.
func FormatFields(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, values[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
