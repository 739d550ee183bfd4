// Package menu provides the interactive script selection menu: a bubbletea
// list with filtering and mouse support, plus a numbered fallback for
// non-terminal input.
package menu

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/scli/internal/log"
)

// ErrCancelled is returned when the user leaves the menu without choosing.
var ErrCancelled = errors.New("selection cancelled")

// Item is one selectable row.
type Item struct {
	Label       string
	Description string
	Value       string
}

// ReloadFunc produces a fresh item list, e.g. after the scripts directory
// changed.
type ReloadFunc func() ([]Item, error)

type reloadMsg struct{}

var zonesOnce sync.Once

// Model holds the menu state.
type Model struct {
	title   string
	items   []Item
	visible []int // indexes into items that pass the filter
	cursor  int   // index into visible

	filter    textinput.Model
	filtering bool

	keys   keyMap
	width  int
	status string

	changes <-chan struct{}
	reload  ReloadFunc

	chosen    int
	cancelled bool
	zonePfx   string
}

// New creates a menu with the given title and items.
func New(title string, items []Item) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.CharLimit = 64

	zonesOnce.Do(zone.NewGlobal)

	m := Model{
		title:   title,
		items:   items,
		filter:  ti,
		keys:    defaultKeys(),
		chosen:  -1,
		zonePfx: zone.NewPrefix(),
	}
	m.applyFilter()
	return m
}

// WithReload makes the menu call reload whenever changes fires.
func (m Model) WithReload(changes <-chan struct{}, reload ReloadFunc) Model {
	m.changes = changes
	m.reload = reload
	return m
}

// Chosen returns the selected item, if any.
func (m Model) Chosen() (Item, bool) {
	if m.chosen < 0 || m.chosen >= len(m.items) {
		return Item{}, false
	}
	return m.items[m.chosen], true
}

// Cancelled reports whether the user quit without choosing.
func (m Model) Cancelled() bool { return m.cancelled }

// Cursor returns the item under the cursor.
func (m Model) Cursor() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Item{}, false
	}
	return m.items[m.visible[m.cursor]], true
}

// Visible returns the items that pass the current filter.
func (m Model) Visible() []Item {
	out := make([]Item, len(m.visible))
	for i, idx := range m.visible {
		out[i] = m.items[idx]
	}
	return out
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil || m.reload == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return reloadMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case reloadMsg:
		m.applyReload()
		return m, m.waitForChange()

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			for pos, idx := range m.visible {
				if z := zone.Get(m.itemZoneID(pos)); z != nil && z.InBounds(msg) {
					m.chosen = idx
					return m, tea.Quit
				}
			}
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancelled = true
			return m, tea.Quit
		}
		if m.filtering {
			return m.updateFiltering(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.visible) {
			m.chosen = m.visible[m.cursor]
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if n := int(s[0] - '1'); n < len(m.visible) {
				m.cursor = n
			}
		}
	}
	return m, nil
}

func (m Model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		return m.updateBrowsing(msg)
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter recomputes visible items, keeping the cursor on the same item
// when it is still shown.
func (m *Model) applyFilter() {
	current := -1
	if m.cursor >= 0 && m.cursor < len(m.visible) {
		current = m.visible[m.cursor]
	}

	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = make([]int, 0, len(m.items))
	for i, it := range m.items {
		if query == "" ||
			strings.Contains(strings.ToLower(it.Label), query) ||
			strings.Contains(strings.ToLower(it.Description), query) {
			m.visible = append(m.visible, i)
		}
	}

	m.cursor = 0
	for pos, idx := range m.visible {
		if idx == current {
			m.cursor = pos
			break
		}
	}
}

func (m *Model) applyReload() {
	items, err := m.reload()
	if err != nil {
		log.ErrorErr(log.CatMenu, "Reload failed", err)
		m.status = "reload failed: " + err.Error()
		return
	}

	var current string
	if it, ok := m.Cursor(); ok {
		current = it.Value
	}

	m.items = items
	m.visible = nil
	m.cursor = 0
	m.applyFilter()
	for pos, idx := range m.visible {
		if m.items[idx].Value == current {
			m.cursor = pos
			break
		}
	}
	m.status = fmt.Sprintf("reloaded %d scripts", len(items))
	log.Info(log.CatMenu, "Menu reloaded", "items", len(items))
}

func (m Model) itemZoneID(pos int) string {
	return fmt.Sprintf("%sitem-%d", m.zonePfx, pos)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}
	return zone.Scan(m.render())
}
