package cobolprocessor

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ReadRecords returns the non-blank lines of a fixed-width data file along
// with the encoding used. Files that are not valid UTF-8 are decoded as
// Windows-1252.
func ReadRecords(path string) ([]string, string, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path chosen by the user
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}

	encoding := "utf-8"
	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, "", fmt.Errorf("decoding %s: %w", path, err)
		}
		raw, encoding = decoded, "windows-1252"
	}

	var records []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, line)
	}
	return records, encoding, nil
}

// WriteCSV writes one row per record with a header of field names.
func WriteCSV(w io.Writer, fields []Field, records []string) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(fields))
	for _, rec := range records {
		for i, v := range Decode(rec, fields) {
			row[i] = v.Text
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
