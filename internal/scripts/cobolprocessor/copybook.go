package cobolprocessor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies a copybook field by its PIC clause.
type Kind string

const (
	KindGroup        Kind = "group"
	KindAlphanumeric Kind = "alphanumeric"
	KindNumeric      Kind = "numeric"
)

// ErrNoFields is returned for a copybook without any field definitions.
var ErrNoFields = errors.New("no field definitions found")

// Field is one data description entry. Start is the 1-based column where the
// field begins in a fixed-width record.
type Field struct {
	Level     int
	Name      string
	Picture   string
	Redefines string
	Start     int
	Length    int
	Kind      Kind
	Decimals  int
	Signed    bool
}

// End returns the last column the field occupies.
func (f Field) End() int { return f.Start + f.Length - 1 }

// Elementary reports whether the field holds data, as opposed to grouping
// other fields.
func (f Field) Elementary() bool { return f.Kind != KindGroup }

// Copybook is a parsed record layout.
type Copybook struct {
	Fields []Field
}

// Elementary returns the fields that carry data, in declaration order.
func (c *Copybook) Elementary() []Field {
	var out []Field
	for _, f := range c.Fields {
		if f.Elementary() {
			out = append(out, f)
		}
	}
	return out
}

// RecordLength is the widest column used by any field.
func (c *Copybook) RecordLength() int {
	n := 0
	for _, f := range c.Fields {
		n = max(n, f.End())
	}
	return n
}

// Redefinitions returns the fields declared with REDEFINES.
func (c *Copybook) Redefinitions() []Field {
	var out []Field
	for _, f := range c.Fields {
		if f.Redefines != "" {
			out = append(out, f)
		}
	}
	return out
}

var entryPattern = regexp.MustCompile(
	`(?i)^(\d{1,2})\s+([A-Z0-9][A-Z0-9-]*)` +
		`(?:\s+REDEFINES\s+([A-Z0-9][A-Z0-9-]*))?` +
		`(?:\s+PIC(?:TURE)?(?:\s+IS)?\s+([SVXA9()0-9]+))?`)

// ParseCopybook reads data description entries one per line. Level 01 starts
// a record at column 1 and REDEFINES overlays the named field. Condition
// names (88) and RENAMES (66) take no storage and are skipped.
func ParseCopybook(r io.Reader) (*Copybook, error) {
	var (
		cb     Copybook
		pos    = 1
		starts = make(map[string]int)
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		if isComment(raw) {
			continue
		}
		line := strings.TrimSpace(raw)
		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		level, _ := strconv.Atoi(m[1])
		if level == 66 || level == 88 {
			continue
		}
		f := Field{
			Level:     level,
			Name:      strings.ToUpper(m[2]),
			Redefines: strings.ToUpper(m[3]),
			Picture:   strings.ToUpper(m[4]),
			Kind:      KindGroup,
		}

		switch {
		case f.Redefines != "":
			start, ok := starts[f.Redefines]
			if !ok {
				return nil, fmt.Errorf("line %d: %s redefines unknown field %s", lineNo, f.Name, f.Redefines)
			}
			pos = start
		case level == 1:
			pos = 1
		}
		f.Start = pos

		if f.Picture != "" {
			pic, err := ParsePicture(f.Picture)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, f.Name, err)
			}
			f.Length, f.Kind, f.Decimals, f.Signed = pic.Length, pic.Kind, pic.Decimals, pic.Signed
			pos += f.Length
		}

		starts[f.Name] = f.Start
		cb.Fields = append(cb.Fields, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading copybook: %w", err)
	}
	if len(cb.Fields) == 0 {
		return nil, ErrNoFields
	}

	sizeGroups(cb.Fields)
	return &cb, nil
}

// sizeGroups sets each group's length to the span of its subordinate fields.
func sizeGroups(fields []Field) {
	for i := range fields {
		if fields[i].Elementary() {
			continue
		}
		end := fields[i].Start - 1
		for j := i + 1; j < len(fields) && fields[j].Level > fields[i].Level; j++ {
			end = max(end, fields[j].End())
		}
		fields[i].Length = end - fields[i].Start + 1
	}
}

// isComment reports whether raw is a comment line: an indicator of * or / in
// column 7, or a line starting with *.
func isComment(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "*") {
		return true
	}
	return len(raw) >= 7 && (raw[6] == '*' || raw[6] == '/') &&
		strings.TrimLeft(raw[:6], "0123456789 ") == ""
}

// Picture is the storage described by a PIC clause.
type Picture struct {
	Length   int
	Kind     Kind
	Decimals int
	Signed   bool
}

// ParsePicture interprets a PIC string such as "X(10)", "9(5)V99" or
// "S999V9(2)". S and V take no storage.
func ParsePicture(pic string) (Picture, error) {
	var p Picture
	pic = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(pic)), ".")
	if pic == "" {
		return p, errors.New("empty picture")
	}

	afterV := false
	alpha, numeric := false, false
	for i := 0; i < len(pic); i++ {
		c := pic[i]
		switch c {
		case 'S':
			if i != 0 {
				return p, fmt.Errorf("picture %s: S must come first", pic)
			}
			p.Signed = true
			continue
		case 'V':
			if afterV {
				return p, fmt.Errorf("picture %s: more than one V", pic)
			}
			afterV = true
			continue
		case 'X', 'A':
			alpha = true
		case '9':
			numeric = true
		default:
			return p, fmt.Errorf("picture %s: unexpected %q", pic, c)
		}

		count := 1
		if i+1 < len(pic) && pic[i+1] == '(' {
			end := strings.IndexByte(pic[i+1:], ')')
			if end < 0 {
				return p, fmt.Errorf("picture %s: unclosed repeat count", pic)
			}
			n, err := strconv.Atoi(pic[i+2 : i+1+end])
			if err != nil || n < 1 {
				return p, fmt.Errorf("picture %s: bad repeat count", pic)
			}
			count = n
			i += 1 + end
		}

		p.Length += count
		if c == '9' && afterV {
			p.Decimals += count
		}
	}

	switch {
	case alpha:
		p.Kind = KindAlphanumeric
	case numeric:
		p.Kind = KindNumeric
	default:
		return p, fmt.Errorf("picture %s: no storage", pic)
	}
	return p, nil
}
