// Package markdown renders script help text for the terminal.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with scli's configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer with the given wrap width and style: "dark",
// "light", or "notty" for plain output. Empty means "dark".
// A fixed style is used instead of WithAutoStyle() to avoid terminal OSC
// queries leaking into stdin.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output without the
// surrounding blank lines glamour adds.
func (r *Renderer) Render(markdown string) (string, error) {
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
