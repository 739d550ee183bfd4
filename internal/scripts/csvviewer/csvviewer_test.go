package csvviewer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/ui/tty"
)

func TestDetectSeparator(t *testing.T) {
	tests := map[string]struct {
		lines []string
		want  rune
	}{
		"comma":        {[]string{"a,b,c", "1,2,3"}, ','},
		"semicolon":    {[]string{"a;b", "1;2"}, ';'},
		"tab":          {[]string{"a\tb\tc", "1\t2\t3"}, '\t'},
		"pipe":         {[]string{"a|b", "1|2"}, '|'},
		"inconsistent": {[]string{"a;b,c", "1;2;3,4"}, ','},
		"none":         {[]string{"abc", "def"}, ','},
		"empty":        {nil, ','},
		"highest wins": {[]string{"a,b;c;d", "1,2;3;4"}, ';'},
		"blank lines":  {[]string{"a;b", "", "1;2"}, ';'},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, string(tt.want), string(DetectSeparator(tt.lines)))
		})
	}
}

func TestParse_PadsRaggedRows(t *testing.T) {
	d, err := Parse(strings.NewReader("name,age\nann,31\nbob\ncid,40,extra\n"), ',')
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age", "column_3"}, d.Columns)
	require.Equal(t, [][]string{
		{"ann", "31", ""},
		{"bob", "", ""},
		{"cid", "40", "extra"},
	}, d.Rows)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""), ',')
	require.Error(t, err)
}

func writeCSV(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "people.csv", []byte("\xef\xbb\xbfname;city\nann;Oslo\nbob;\"Rome, IT\"\n"))

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ';', d.Separator)
	require.Equal(t, "utf-8", d.Encoding)
	require.Equal(t, []string{"name", "city"}, d.Columns, "byte order mark is stripped")
	require.Equal(t, "Rome, IT", d.Rows[1][1])
}

func TestLoad_Windows1252(t *testing.T) {
	// "café" with é as 0xE9.
	path := writeCSV(t, t.TempDir(), "legacy.csv", []byte("name\ncaf\xe9\n"))

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "windows-1252", d.Encoding)
	require.Equal(t, "café", d.Rows[0][0])
}

func TestFilter(t *testing.T) {
	rows := [][]string{{"Ann", "Oslo"}, {"Bob", "Rome"}, {"Cid", "oslo"}}
	require.Equal(t, []int{0, 1, 2}, Filter(rows, ""))
	require.Equal(t, []int{0, 2}, Filter(rows, "OSLO"))
	require.Empty(t, Filter(rows, "paris"))
}

// Paging visits every row exactly once, in order.
func TestPaging_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 500).Draw(rt, "rows")
		size := rapid.IntRange(1, 100).Draw(rt, "size")

		next := 0
		for p := 0; p < PageCount(n, size); p++ {
			start, end := PageBounds(n, size, p)
			if start != next || end < start || end-start > size {
				rt.Fatalf("page %d: [%d,%d) after %d", p, start, end, next)
			}
			next = end
		}
		if next != n {
			rt.Fatalf("covered %d of %d rows", next, n)
		}
	})
}

func testData(n int) *Data {
	d := &Data{Path: "/tmp/people.csv", Separator: ',', Columns: []string{"id", "name"}}
	for i := 0; i < n; i++ {
		name := "even"
		if i%2 == 1 {
			name = "odd"
		}
		d.Rows = append(d.Rows, []string{fmt.Sprint(i), name})
	}
	return d
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestModel_Paging(t *testing.T) {
	m := NewModel(testData(25), 10)
	require.Equal(t, 3, m.Pages())
	require.Len(t, m.Rows(), 10)

	m = press(m, "n", "n", "n")
	require.Equal(t, 2, m.Page(), "stops at the last page")
	require.Len(t, m.Rows(), 5)
	require.Equal(t, "20", m.Rows()[0][0])

	m = press(m, "p", "p", "p")
	require.Equal(t, 0, m.Page())
}

func TestModel_FilterAndReset(t *testing.T) {
	m := NewModel(testData(25), 10)
	m = press(m, "/", "o", "d", "d", "enter")
	require.Equal(t, "odd", m.Query())
	require.Equal(t, 12, m.Matches())
	require.Equal(t, 0, m.Page())
	require.Contains(t, m.View(), "Filtered: 12")

	m = press(m, "ctrl+r")
	require.Empty(t, m.Query())
	require.Equal(t, 25, m.Matches())
}

func TestModel_FilterEscDiscardsEdit(t *testing.T) {
	m := press(NewModel(testData(4), 10), "/", "x", "esc")
	require.Empty(t, m.Query())
	require.Equal(t, 4, m.Matches())
}

func TestModel_NoMatches(t *testing.T) {
	m := press(NewModel(testData(4), 10), "/", "z", "z", "enter")
	require.Zero(t, m.Matches())
	require.Contains(t, m.View(), "No data")
	require.Contains(t, m.View(), "Page 1 of 1")
}

func TestModel_Program(t *testing.T) {
	tm := teatest.NewTestModel(t, NewModel(testData(30), 10), teatest.WithInitialTermSize(80, 24))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Page 1 of 3"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyMsg("n"))
	tm.Send(keyMsg("q"))

	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(Model)
	require.Equal(t, 1, final.Page())
}

// answers replays Select values by label prefix and Input values in order.
type answers struct {
	selects []string
	inputs  []string
}

func (a *answers) Select(_ context.Context, _ string, choices []script.Choice) (script.Choice, error) {
	if len(a.selects) == 0 {
		return script.Choice{}, script.ErrCancelled
	}
	want := a.selects[0]
	a.selects = a.selects[1:]
	for _, c := range choices {
		if c.Label == want {
			return c, nil
		}
	}
	return script.Choice{}, fmt.Errorf("no choice %q", want)
}

func (a *answers) Input(context.Context, string, string) (string, error) {
	if len(a.inputs) == 0 {
		return "", script.ErrCancelled
	}
	v := a.inputs[0]
	a.inputs = a.inputs[1:]
	return v, nil
}

func (a *answers) Confirm(context.Context, string, bool) (bool, error) { return true, nil }

func TestDirChoices(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o750))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o750))
	writeCSV(t, dir, "b.csv", []byte("x\n"))
	writeCSV(t, dir, "a.CSV", []byte("x\n"))
	writeCSV(t, dir, "notes.txt", []byte("x\n"))

	choices, err := DirChoices(dir)
	require.NoError(t, err)

	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	require.Equal(t, []string{"..", "sub/", "a.CSV", "b.csv", "Enter path manually", "Cancel"}, labels)
	require.Equal(t, "CSV File (2.0 B)", choices[2].Description)
}

func TestChooseFile_BrowseIntoSubdirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data"), 0o750))
	want := writeCSV(t, filepath.Join(dir, "data"), "x.csv", []byte("a\n"))

	env := &script.Env{Stdout: &bytes.Buffer{}, UI: &answers{selects: []string{"data/", "x.csv"}}}
	got, err := ChooseFile(context.Background(), env, dir)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestChooseFile_ManualPath(t *testing.T) {
	dir := t.TempDir()
	want := writeCSV(t, dir, "x.csv", []byte("a\n"))

	out := &bytes.Buffer{}
	env := &script.Env{Stdout: out, UI: &answers{
		selects: []string{"Enter path manually", "Enter path manually"},
		inputs:  []string{"missing.csv", "x.csv"},
	}}
	got, err := ChooseFile(context.Background(), env, dir)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Contains(t, out.String(), "Invalid CSV file path")
}

func TestChooseFile_Cancel(t *testing.T) {
	env := &script.Env{Stdout: &bytes.Buffer{}, UI: &answers{selects: []string{"Cancel"}}}
	_, err := ChooseFile(context.Background(), env, t.TempDir())
	require.ErrorIs(t, err, script.ErrCancelled)
}

func TestRun_PreviewWithoutTerminal(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "people.csv", []byte("name|city\nann|Oslo\nbob|Rome\ncid|Kyiv\n"))

	out := &bytes.Buffer{}
	env := &script.Env{
		Name: Key, WorkDir: dir, Stdin: strings.NewReader(""), Stdout: out,
		Config: config.Values{"file": "people.csv", "preview_rows": 2},
	}
	require.NoError(t, Run(context.Background(), env))

	text := out.String()
	require.Contains(t, text, "Loaded people.csv (3 rows, 2 columns, separator '|', utf-8)")
	require.Contains(t, text, "name | city")
	require.Contains(t, text, "ann  | Oslo")
	require.NotContains(t, text, "cid")
	require.Contains(t, text, "... 1 more rows")
}

func TestRun_NoFileSelected(t *testing.T) {
	out := &bytes.Buffer{}
	env := &script.Env{Name: Key, WorkDir: t.TempDir(), Stdout: out, UI: &answers{}}
	require.NoError(t, Run(context.Background(), env))
	require.Contains(t, out.String(), "No file selected.")
}

func TestProgramInput_UsesUnderlyingFile(t *testing.T) {
	f, err := os.Open(writeCSV(t, t.TempDir(), "in.csv", []byte("a\n")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	env := &script.Env{Stdin: tty.NewLineReader(f)}
	in := programInput(env)
	require.Same(t, f, in, "the table program must read the raw file so it can enter raw mode")

	_, ok := in.(io.ReadWriteCloser)
	require.True(t, ok)
}
