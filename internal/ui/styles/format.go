package styles

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// TruncateString truncates s to fit within maxWidth cells, adding an ellipsis
// when it had to cut.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to exactly width cells, truncating if longer.
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}

// FormatSize renders a byte count as "12.3 KB".
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
