package csvviewer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// candidateSeparators are tried in order; the first wins a tie.
var candidateSeparators = []rune{',', ';', '\t', '|'}

// sniffLines is how many leading lines DetectSeparator inspects.
const sniffLines = 5

// DetectSeparator picks the separator that appears the same non-zero number
// of times on every sampled line, preferring the highest count. It falls back
// to a comma.
func DetectSeparator(lines []string) rune {
	best, bestCount := ',', 0
	for _, sep := range candidateSeparators {
		count := -1
		consistent := true
		for _, line := range lines {
			if line == "" {
				continue
			}
			n := strings.Count(line, string(sep))
			if count == -1 {
				count = n
			} else if n != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestCount {
			best, bestCount = sep, count
		}
	}
	return best
}

// SeparatorName renders sep for display.
func SeparatorName(sep rune) string {
	if sep == '\t' {
		return `\t`
	}
	return string(sep)
}

// Data is a fully loaded CSV file.
type Data struct {
	Path      string
	Separator rune
	Encoding  string
	Columns   []string
	Rows      [][]string
}

// Load reads path, detecting the separator from its first lines. Files that
// are not valid UTF-8 are decoded as Windows-1252.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path chosen by the user
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	encoding := "utf-8"
	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		raw, encoding = decoded, "windows-1252"
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	sep := DetectSeparator(headLines(text, sniffLines))
	data, err := Parse(strings.NewReader(text), sep)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	data.Path = path
	data.Encoding = encoding
	return data, nil
}

// Parse reads CSV records separated by sep. The first record is the header.
// Rows are padded so every row has one cell per column.
func Parse(r io.Reader, sep rune) (*Data, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, err
	}

	d := &Data{Separator: sep, Columns: header}
	width := len(header)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		width = max(width, len(rec))
		d.Rows = append(d.Rows, rec)
	}

	// Every row gets exactly one cell per column; extra cells get a
	// generated header.
	for i := len(d.Columns); i < width; i++ {
		d.Columns = append(d.Columns, fmt.Sprintf("column_%d", i+1))
	}
	for i, row := range d.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		d.Rows[i] = row
	}
	return d, nil
}

func headLines(text string, n int) []string {
	sc := bufio.NewScanner(strings.NewReader(text))
	var lines []string
	for len(lines) < n && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

// Filter returns the indices of rows with a cell containing query, ignoring
// case. An empty query matches every row.
func Filter(rows [][]string, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]int, 0, len(rows))
	for i, row := range rows {
		if query == "" || rowMatches(row, query) {
			out = append(out, i)
		}
	}
	return out
}

func rowMatches(row []string, lowerQuery string) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), lowerQuery) {
			return true
		}
	}
	return false
}

// PageCount returns how many pages of size hold n rows; at least one.
func PageCount(n, size int) int {
	if size <= 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// PageBounds returns the [start, end) slice bounds of page within n rows.
func PageBounds(n, size, page int) (int, int) {
	if size <= 0 {
		return 0, n
	}
	start := page * size
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}
