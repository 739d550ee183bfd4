package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/scli/internal/ui/styles"
)

const (
	minBoxWidth = 56
	maxBoxWidth = 100
)

func (m Model) boxWidth() int {
	w := minBoxWidth
	for _, it := range m.items {
		if n := lipgloss.Width(it.Label) + lipgloss.Width(it.Description) + 10; n > w {
			w = n
		}
	}
	if m.width > 0 && w > m.width-2 {
		w = m.width - 2
	}
	return min(w, maxBoxWidth)
}

func (m Model) render() string {
	width := m.boxWidth()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	dividerStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(" " + m.filter.View())
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(styles.MutedStyle.Render("  no matching scripts"))
		b.WriteString("\n")
	}

	for pos, idx := range m.visible {
		it := m.items[idx]
		b.WriteString(zone.Mark(m.itemZoneID(pos), m.renderItem(pos, it, width)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(styles.MutedStyle.Render(" " + m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width)

	return boxStyle.Render(b.String())
}

func (m Model) renderItem(pos int, it Item, width int) string {
	number := "  "
	if pos < 9 {
		number = fmt.Sprintf("%d.", pos+1)
	}

	label := it.Label
	desc := ""
	if it.Description != "" {
		room := width - lipgloss.Width(label) - 8
		desc = " - " + styles.TruncateString(it.Description, max(room, 0))
	}

	if pos == m.cursor {
		return styles.SelectionIndicatorStyle.Render(">") + number + " " +
			lipgloss.NewStyle().Bold(true).Foreground(styles.ScriptNameColor).Render(label) +
			styles.DescriptionStyle.Render(desc)
	}
	return " " + number + " " + styles.NameStyle.Render(label) + styles.MutedStyle.Render(desc)
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styles.MutedStyle.Render(" " + strings.Join(parts, " • "))
}
