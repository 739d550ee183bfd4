package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/ui/tty"
)

// Options controls how Run talks to the user.
type Options struct {
	In  io.Reader
	Out io.Writer

	// Changes and Reload enable live reload while the menu is open.
	Changes <-chan struct{}
	Reload  ReloadFunc

	// ForceFallback skips terminal detection and uses the numbered menu.
	ForceFallback bool
}

func (o Options) withDefaults() Options {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}

// Run shows the menu and returns the chosen item. It uses the bubbletea menu
// when In and Out are terminals, otherwise the numbered fallback.
// Returns ErrCancelled when the user quits.
func Run(ctx context.Context, title string, items []Item, opts Options) (Item, error) {
	opts = opts.withDefaults()
	if len(items) == 0 {
		return Item{}, fmt.Errorf("no options available")
	}

	if opts.ForceFallback || !tty.Interactive(opts.In, opts.Out) {
		log.Debug(log.CatMenu, "Using fallback menu", "items", len(items))
		return Fallback(ctx, title, items, opts.In, opts.Out)
	}

	m := New(title, items).WithReload(opts.Changes, opts.Reload)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(tty.Source(opts.In)),
		tea.WithOutput(opts.Out),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Item{}, ctxErr
		}
		return Item{}, fmt.Errorf("running menu: %w", err)
	}
	return Result(final)
}

// Result extracts the outcome from a finished menu model.
func Result(final tea.Model) (Item, error) {
	fm, ok := final.(Model)
	if !ok {
		return Item{}, fmt.Errorf("unexpected menu model %T", final)
	}
	if it, ok := fm.Chosen(); ok {
		log.Debug(log.CatMenu, "Menu selection", "value", it.Value)
		return it, nil
	}
	return Item{}, ErrCancelled
}

// Fallback prints a numbered list and reads the choice from in. q, an empty
// line or EOF cancels. Invalid input re-prompts.
func Fallback(ctx context.Context, title string, items []Item, in io.Reader, out io.Writer) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("no options available")
	}

	_, _ = fmt.Fprintf(out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	for i, it := range items {
		if it.Description != "" {
			_, _ = fmt.Fprintf(out, "%d. %s - %s\n", i+1, it.Label, it.Description)
		} else {
			_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, it.Label)
		}
	}

	lines := tty.Lines(in)
	for {
		if err := ctx.Err(); err != nil {
			return Item{}, err
		}
		_, _ = fmt.Fprintf(out, "\nEnter your choice (1-%d, q to quit): ", len(items))
		response, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(out)
			return Item{}, ErrCancelled
		}
		if err != nil {
			return Item{}, fmt.Errorf("reading choice: %w", err)
		}

		if response == "" || strings.EqualFold(response, "q") {
			return Item{}, ErrCancelled
		}

		n, err := strconv.Atoi(response)
		switch {
		case err != nil:
			_, _ = fmt.Fprintln(out, "Please enter a valid number")
		case n < 1 || n > len(items):
			_, _ = fmt.Fprintf(out, "Please enter a number between 1 and %d\n", len(items))
		default:
			return items[n-1], nil
		}
	}
}

// IsCancelled reports whether err means the user backed out.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
