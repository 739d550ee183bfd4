package app

import (
	"context"
	"errors"
	"io"

	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/ui/menu"
	"github.com/zjrosen/scli/internal/ui/prompt"
)

// terminalUI implements script.UI on top of the menu and prompt components.
type terminalUI struct {
	in            io.Reader
	out           io.Writer
	prompter      *prompt.Prompter
	forceFallback bool
}

func newTerminalUI(in io.Reader, out io.Writer, forceFallback bool) *terminalUI {
	return &terminalUI{
		in:            in,
		out:           out,
		prompter:      &prompt.Prompter{In: in, Out: out, ForceFallback: forceFallback},
		forceFallback: forceFallback,
	}
}

func (u *terminalUI) Select(ctx context.Context, title string, choices []script.Choice) (script.Choice, error) {
	items := make([]menu.Item, len(choices))
	for i, c := range choices {
		items[i] = menu.Item{Label: c.Label, Description: c.Description, Value: c.Value}
	}

	it, err := menu.Run(ctx, title, items, menu.Options{In: u.in, Out: u.out, ForceFallback: u.forceFallback})
	if err != nil {
		return script.Choice{}, cancelled(err)
	}
	for _, c := range choices {
		if c.Value == it.Value {
			return c, nil
		}
	}
	return script.Choice{Label: it.Label, Value: it.Value, Description: it.Description}, nil
}

func (u *terminalUI) Input(ctx context.Context, label, def string) (string, error) {
	s, err := u.prompter.Input(ctx, label, def)
	return s, cancelled(err)
}

func (u *terminalUI) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	ok, err := u.prompter.Confirm(ctx, label, def)
	return ok, cancelled(err)
}

// cancelled maps the UI packages' cancellation errors onto script.ErrCancelled.
func cancelled(err error) error {
	if errors.Is(err, menu.ErrCancelled) || errors.Is(err, prompt.ErrCancelled) {
		return script.ErrCancelled
	}
	return err
}
