// Package presentation renders catalog listings, tool and script details,
// and load warnings for the command line.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/ui/markdown"
	"github.com/zjrosen/scli/internal/ui/styles"
)

// DefaultWidth is the wrap width for descriptions when the terminal size is unknown.
const DefaultWidth = 80

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	width  int
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
		width:  DefaultWidth,
	}
}

// WithWidth sets the wrap width. Non-positive widths are ignored.
func (f *Formatter) WithWidth(width int) *Formatter {
	if width > 0 {
		f.width = width
	}
	return f
}

// FormatJSON writes v as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatScriptsJSON writes the catalog and its load problems as JSON.
func (f *Formatter) FormatScriptsJSON(entries []script.Entry, problems []script.LoadError) error {
	return f.FormatJSON(ListDTO{
		Scripts:  FromEntries(entries),
		Problems: FromProblems(problems),
	})
}

// FormatScriptsTable writes a Name/Description table titled "Available Scripts".
// An empty catalog prints a notice instead.
func (f *Formatter) FormatScriptsTable(entries []script.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(f.writer, styles.WarningStyle.Render(script.ErrEmptyCatalog.Error()))
		return err
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, e.Description}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.BorderDefaultColor)).
		Headers("Name", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Bold(true)
			case col == 0:
				return base.Foreground(styles.ScriptNameColor)
			default:
				return base.Foreground(styles.ScriptDescriptionColor)
			}
		})

	_, err := fmt.Fprintf(f.writer, "%s\n%s\n", styles.TitleStyle.Render("Available Scripts"), t.Render())
	return err
}

// FormatProblems writes one warning line per load problem.
func (f *Formatter) FormatProblems(problems []script.LoadError) error {
	for _, p := range problems {
		line := fmt.Sprintf("warning: skipped script %s (%s): %v", p.Name, p.Path, p.Err)
		if _, err := fmt.Fprintln(f.writer, styles.WarningStyle.Render(line)); err != nil {
			return err
		}
	}
	return nil
}

// ToolInfo is what `info` prints without a script argument.
type ToolInfo struct {
	Name        string
	Version     string
	ScriptsDir  string
	ScriptCount int
	ConfigFile  string
	LogFile     string
}

// Commands lists the command summary shown by `info`.
var Commands = []struct{ Usage, Summary string }{
	{"scli", "Interactive script selection"},
	{"scli -s <script_name>", "Run specific script directly"},
	{"scli run", "Interactive script selection"},
	{"scli run <script_name>", "Run specific script"},
	{"scli list-scripts", "List all available scripts"},
	{"scli info [script_name]", "Show this information, or details for one script"},
	{"scli init", "Create a config file and sample script manifests"},
}

// FormatToolInfo writes the tool metadata and command summary.
func (f *Formatter) FormatToolInfo(info ToolInfo) error {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("SCLI - Script CLI Tool"))
	if info.Version != "" {
		b.WriteString(styles.MutedStyle.Render(" " + info.Version))
	}
	b.WriteString("\n\n")
	b.WriteString(wordwrap.String("A simple CLI tool for discovering and executing scripts.", f.width))
	b.WriteString("\n\n")

	fields := []struct{ label, value string }{
		{"Scripts directory", info.ScriptsDir},
		{"Scripts", fmt.Sprint(info.ScriptCount)},
		{"Config file", orNone(info.ConfigFile)},
		{"Log file", orNone(info.LogFile)},
	}
	for _, fl := range fields {
		b.WriteString(fmt.Sprintf("%s %s\n", styles.HeaderStyle.Render(styles.PadRight(fl.label+":", 19)), fl.value))
	}

	b.WriteString("\n" + styles.HeaderStyle.Render("Commands:") + "\n")
	for _, c := range Commands {
		b.WriteString(fmt.Sprintf("  • %s - %s\n", styles.NameStyle.Render(c.Usage), c.Summary))
	}

	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatScriptInfo writes one script's manifest details. Its help markdown is
// rendered with r; a nil renderer prints the raw markdown.
func (f *Formatter) FormatScriptInfo(e script.Entry, config map[string]any, r *markdown.Renderer) error {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(e.Name) + "\n\n")
	b.WriteString(indent.String(wordwrap.String(e.Description, f.width-2), 2) + "\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n", styles.HeaderStyle.Render("Entry:   "), e.EntryKey))
	b.WriteString(fmt.Sprintf("%s %s\n", styles.HeaderStyle.Render("Manifest:"), e.Source))

	if len(config) > 0 {
		b.WriteString(styles.HeaderStyle.Render("Config:") + "\n")
		for _, line := range configLines(config, "") {
			b.WriteString("  " + line + "\n")
		}
	}

	if help := strings.TrimSpace(e.Help); help != "" {
		rendered := help
		if r != nil {
			out, err := r.Render(help)
			if err != nil {
				return fmt.Errorf("rendering help for %s: %w", e.Name, err)
			}
			rendered = out
		}
		b.WriteString("\n" + rendered + "\n")
	}

	_, err := io.WriteString(f.writer, b.String())
	return err
}

func orNone(s string) string {
	if s == "" {
		return styles.MutedStyle.Render("(none)")
	}
	return s
}
