// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"}

	// Script listing
	ScriptNameColor        = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#56D4DD"} // cyan
	ScriptDescriptionColor = lipgloss.AdaptiveColor{Light: "#A21CAF", Dark: "#E39BF0"} // magenta

	BorderDefaultColor   = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#696969"}
	BorderHighlightColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#C08A00", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#8C8C8C"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(BorderHighlightColor)
	NameStyle        = lipgloss.NewStyle().Foreground(ScriptNameColor)
	DescriptionStyle = lipgloss.NewStyle().Foreground(ScriptDescriptionColor)
	MutedStyle       = lipgloss.NewStyle().Foreground(TextMutedColor)
	SuccessStyle     = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	WarningStyle     = lipgloss.NewStyle().Foreground(StatusWarningColor)
	ErrorStyle       = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	HeaderStyle      = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
)
