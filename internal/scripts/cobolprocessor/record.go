package cobolprocessor

import (
	"strconv"
	"strings"
)

// Value is one field decoded from a record.
type Value struct {
	Field Field
	Raw   string
	Text  string
}

// Decode slices line by each field's columns and returns one value per
// field. Fields past the end of a short line come back empty. Numeric fields
// with implied decimals are rendered with a decimal point.
func Decode(line string, fields []Field) []Value {
	runes := []rune(strings.TrimRight(line, "\r\n"))
	values := make([]Value, 0, len(fields))
	for _, f := range fields {
		from := min(f.Start-1, len(runes))
		to := min(from+f.Length, len(runes))
		raw := string(runes[from:to])

		text := strings.TrimSpace(raw)
		if f.Kind == KindNumeric && text != "" {
			text = FormatNumber(text, f.Decimals)
		}
		values = append(values, Value{Field: f, Raw: raw, Text: text})
	}
	return values
}

// FormatNumber places an implied decimal point into a string of digits with
// an optional leading or trailing sign. Anything else is returned as is.
func FormatNumber(s string, decimals int) string {
	digits := s
	neg := false
	switch {
	case strings.HasPrefix(digits, "-"), strings.HasPrefix(digits, "+"):
		neg = digits[0] == '-'
		digits = digits[1:]
	case strings.HasSuffix(digits, "-"), strings.HasSuffix(digits, "+"):
		neg = digits[len(digits)-1] == '-'
		digits = digits[:len(digits)-1]
	}
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return s
	}

	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return s
	}
	out := strconv.FormatUint(n, 10)
	if decimals > 0 {
		if len(out) <= decimals {
			out = strings.Repeat("0", decimals-len(out)+1) + out
		}
		out = out[:len(out)-decimals] + "." + out[len(out)-decimals:]
	}
	if neg && strings.Trim(out, "0.") != "" {
		out = "-" + out
	}
	return out
}
