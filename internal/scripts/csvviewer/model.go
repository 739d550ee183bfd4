package csvviewer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/scli/internal/ui/styles"
)

const (
	maxColumnWidth = 30
	minColumnWidth = 3
	chromeHeight   = 6 // title, subtitle, filter, footer and help lines
)

type keyMap struct {
	Filter key.Binding
	Reset  key.Binding
	Next   key.Binding
	Prev   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Reset:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
	Next:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	Prev:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the interactive table view of a loaded CSV file.
type Model struct {
	data     *Data
	pageSize int
	page     int
	matches  []int
	query    string

	table     table.Model
	filter    textinput.Model
	filtering bool

	width  int
	height int
}

// NewModel builds the viewer showing the first page of data.
func NewModel(data *Data, pageSize int) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter rows"

	t := table.New(table.WithFocused(true), table.WithHeight(20))
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = s.Selected.Foreground(styles.SelectionIndicatorColor).Bold(true)
	t.SetStyles(s)

	m := Model{
		data:     data,
		pageSize: pageSize,
		filter:   ti,
		table:    t,
		matches:  Filter(data.Rows, ""),
	}
	m.refresh()
	return m
}

// Page returns the zero-based current page.
func (m Model) Page() int { return m.page }

// Pages returns the number of pages for the current filter.
func (m Model) Pages() int { return PageCount(len(m.matches), m.pageSize) }

// Matches returns how many rows pass the current filter.
func (m Model) Matches() int { return len(m.matches) }

// Query returns the active filter text.
func (m Model) Query() string { return m.query }

// Rows returns the rows currently loaded into the table.
func (m Model) Rows() []table.Row { return m.table.Rows() }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if h := msg.Height - chromeHeight; h > 3 {
			m.table.SetHeight(h)
		}
		m.table.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFiltering(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Filter):
			m.filtering = true
			m.filter.SetValue(m.query)
			m.filter.CursorEnd()
			return m, m.filter.Focus()
		case key.Matches(msg, keys.Reset):
			m.applyQuery("")
			return m, nil
		case key.Matches(msg, keys.Next):
			if m.page < m.Pages()-1 {
				m.page++
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, keys.Prev):
			if m.page > 0 {
				m.page--
				m.refresh()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.applyQuery(m.filter.Value())
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *Model) applyQuery(q string) {
	m.query = strings.TrimSpace(q)
	m.matches = Filter(m.data.Rows, m.query)
	m.page = 0
	m.refresh()
}

// refresh loads the current page into the table and sizes its columns.
func (m *Model) refresh() {
	start, end := PageBounds(len(m.matches), m.pageSize, m.page)
	rows := make([]table.Row, 0, end-start)
	for _, idx := range m.matches[start:end] {
		rows = append(rows, table.Row(m.data.Rows[idx]))
	}

	cols := make([]table.Column, len(m.data.Columns))
	for i, title := range m.data.Columns {
		w := runewidth.StringWidth(title)
		for _, r := range rows {
			if i < len(r) {
				w = max(w, runewidth.StringWidth(r[i]))
			}
		}
		cols[i] = table.Column{Title: title, Width: min(max(w, minColumnWidth), maxColumnWidth)}
	}

	// Rows must be cleared before columns shrink.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("CSV Viewer - "+filepath.Base(m.data.Path)) + "\n")

	sub := fmt.Sprintf("Separator: '%s' | Total Rows: %d", SeparatorName(m.data.Separator), len(m.data.Rows))
	if m.query != "" {
		sub += fmt.Sprintf(" | Filtered: %d", len(m.matches))
	}
	b.WriteString(styles.MutedStyle.Render(sub) + "\n")

	switch {
	case m.filtering:
		b.WriteString(m.filter.View() + "\n")
	case m.query != "":
		b.WriteString(styles.MutedStyle.Render("filter: "+m.query) + "\n")
	default:
		b.WriteString("\n")
	}

	if len(m.matches) == 0 {
		b.WriteString(styles.WarningStyle.Render("No data") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	b.WriteString(fmt.Sprintf("Page %d of %d\n", m.page+1, m.Pages()))

	help := []key.Binding{keys.Filter, keys.Reset, keys.Next, keys.Prev, keys.Quit}
	parts := make([]string, len(help))
	for i, h := range help {
		parts[i] = h.Help().Key + " " + h.Help().Desc
	}
	b.WriteString(styles.MutedStyle.Render(strings.Join(parts, " • ")))
	return b.String()
}
