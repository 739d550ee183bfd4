package presentation

import (
	"fmt"
	"sort"

	"github.com/zjrosen/scli/internal/log"
)

// configLines flattens config into sorted "key = value" lines using dot
// notation for nested maps. Sensitive values are masked.
func configLines(config map[string]any, prefix string) []string {
	masked := log.MaskSensitive(config)
	keys := make([]string, 0, len(masked))
	for k := range masked {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		switch v := masked[k].(type) {
		case map[string]any:
			lines = append(lines, configLines(v, full)...)
		default:
			lines = append(lines, fmt.Sprintf("%s = %v", full, v))
		}
	}
	return lines
}
