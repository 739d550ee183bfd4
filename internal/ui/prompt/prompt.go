// Package prompt asks the user for a line of text or a yes/no answer, with a
// plain line-input fallback when not attached to a terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/scli/internal/ui/styles"
	"github.com/zjrosen/scli/internal/ui/tty"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("input cancelled")

// Prompter reads answers from In and writes prompts to Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// ForceFallback skips terminal detection.
	ForceFallback bool
}

// New returns a prompter on the process's stdio.
func New() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

func (p *Prompter) interactive() bool {
	return !p.ForceFallback && tty.Interactive(p.In, p.Out)
}

// readLine keeps one line buffer across prompts so piped input is not lost.
func (p *Prompter) readLine() (string, error) {
	lines := tty.Lines(p.In)
	p.In = lines
	return lines.ReadLine()
}

// Input asks for a line of text. An empty answer yields def.
func (p *Prompter) Input(ctx context.Context, prompt, def string) (string, error) {
	if p.interactive() {
		return p.runInput(ctx, prompt, def)
	}

	label := prompt
	if def != "" {
		label += fmt.Sprintf(" (default: %s)", def)
	}
	_, _ = fmt.Fprintf(p.Out, "%s: ", label)

	answer, err := p.readLine()
	if errors.Is(err, io.EOF) {
		_, _ = fmt.Fprintln(p.Out)
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question. An empty answer, or EOF, yields def.
func (p *Prompter) Confirm(ctx context.Context, prompt string, def bool) (bool, error) {
	if p.interactive() {
		return p.runConfirm(ctx, prompt, def)
	}

	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	_, _ = fmt.Fprintf(p.Out, "%s (%s): ", prompt, hint)

	answer, err := p.readLine()
	if errors.Is(err, io.EOF) {
		_, _ = fmt.Fprintln(p.Out)
		return def, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading input: %w", err)
	}
	return ParseYesNo(answer, def), nil
}

// ParseYesNo interprets a confirm answer.
func ParseYesNo(answer string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

func (p *Prompter) runInput(ctx context.Context, prompt, def string) (string, error) {
	final, err := tea.NewProgram(NewInputModel(prompt, def),
		tea.WithContext(ctx), tea.WithInput(tty.Source(p.In)), tea.WithOutput(p.Out)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("running input prompt: %w", err)
	}
	m := final.(InputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.Value(), nil
}

func (p *Prompter) runConfirm(ctx context.Context, prompt string, def bool) (bool, error) {
	final, err := tea.NewProgram(NewConfirmModel(prompt, def),
		tea.WithContext(ctx), tea.WithInput(tty.Source(p.In)), tea.WithOutput(p.Out)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("running confirm prompt: %w", err)
	}
	m := final.(ConfirmModel)
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.value, nil
}

// InputModel is a single-line text prompt.
type InputModel struct {
	prompt    string
	def       string
	input     textinput.Model
	done      bool
	cancelled bool
}

// NewInputModel creates a focused text prompt showing def as placeholder.
func NewInputModel(prompt, def string) InputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = def
	ti.Focus()
	return InputModel{prompt: prompt, def: def, input: ti}
}

// Value returns the typed text, or the default when nothing was typed.
func (m InputModel) Value() string {
	if v := strings.TrimSpace(m.input.Value()); v != "" {
		return v
	}
	return m.def
}

// Cancelled reports whether the prompt was aborted.
func (m InputModel) Cancelled() bool { return m.cancelled }

func (m InputModel) Init() tea.Cmd { return textinput.Blink }

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m InputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.HeaderStyle.Render(m.prompt),
		m.input.View(),
		styles.MutedStyle.Render("enter confirm • esc cancel"),
	) + "\n"
}

// ConfirmModel is a yes/no prompt toggled with arrows, tab, y or n.
type ConfirmModel struct {
	prompt    string
	value     bool
	done      bool
	cancelled bool
}

// NewConfirmModel creates a confirm prompt starting at def.
func NewConfirmModel(prompt string, def bool) ConfirmModel {
	return ConfirmModel{prompt: prompt, value: def}
}

// Value returns the current answer.
func (m ConfirmModel) Value() bool { return m.value }

// Cancelled reports whether the prompt was aborted.
func (m ConfirmModel) Cancelled() bool { return m.cancelled }

func (m ConfirmModel) Init() tea.Cmd { return nil }

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "left", "right", "tab", "h", "l":
		m.value = !m.value
	case "y", "Y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	case "esc", "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	yes, no := "  Yes  ", "  No  "
	if m.value {
		yes = styles.SelectionIndicatorStyle.Render("> Yes  ")
	} else {
		no = styles.SelectionIndicatorStyle.Render("> No  ")
	}
	return styles.HeaderStyle.Render(m.prompt) + "\n" + yes + no + "\n"
}
