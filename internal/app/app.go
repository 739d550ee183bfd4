// Package app wires discovery, configuration, tracing and the terminal UI
// into a dispatcher for the command line.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/dispatch"
	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/output"
	"github.com/zjrosen/scli/internal/registry"
	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/tracing"
	"github.com/zjrosen/scli/internal/ui/menu"
	"github.com/zjrosen/scli/internal/ui/styles"
	"github.com/zjrosen/scli/internal/ui/tty"
	"github.com/zjrosen/scli/internal/watcher"
)

// MenuTitle heads the interactive script menu.
const MenuTitle = "Available Scripts"

// Options configures New. Zero values fall back to the process's stdio,
// the compiled-in builtins and a disabled tracer.
type Options struct {
	Config     config.Config
	ConfigFile string // Config file in use; its directory is the project root

	Builtins *script.Builtins
	Tracing  *tracing.Provider

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ForceFallback makes menus and prompts use plain line input.
	ForceFallback bool

	// Announce prints "Executing script: <name>" before each run.
	Announce bool
}

// App is one process's view of the scripts directory.
type App struct {
	cfg      config.Config
	builtins *script.Builtins

	discovery  *registry.Discovery
	dispatcher *dispatch.Dispatcher
	configs    *config.ScriptConfigLoader
	outputs    *output.Manager
	tracing    *tracing.Provider
	ui         *terminalUI

	stdin         io.Reader
	stdout        io.Writer
	stderr        io.Writer
	forceFallback bool
	announce      bool

	// selected is the name picked in the last interactive run.
	selected string
}

// New discovers scripts and builds the dispatcher. Discovery fails when the
// scripts directory is missing, or in strict mode when any manifest is bad.
func New(opts Options) (*App, error) {
	a := &App{
		cfg:           opts.Config,
		builtins:      opts.Builtins,
		tracing:       opts.Tracing,
		stdin:         opts.Stdin,
		stdout:        opts.Stdout,
		stderr:        opts.Stderr,
		forceFallback: opts.ForceFallback,
		announce:      opts.Announce,
	}
	if a.builtins == nil {
		a.builtins = Builtins()
	}
	if a.tracing == nil {
		a.tracing = tracing.Disabled()
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	// Menus, prompts and scripts share one line buffer on stdin.
	a.stdin = tty.Lines(a.stdin)

	d, err := a.discover()
	if err != nil {
		return nil, err
	}
	a.discovery = d

	a.configs = config.NewScriptConfigLoader(config.ProjectRoot(opts.ConfigFile), a.cfg.Scripts)
	a.outputs = output.NewManager(a.cfg.OutputDir)
	a.ui = newTerminalUI(a.stdin, a.stdout, a.forceFallback)

	a.dispatcher = dispatch.New(d.Catalog,
		dispatch.WithProblems(d.Problems),
		dispatch.WithSelector(dispatch.SelectorFunc(a.selectScript)),
		dispatch.WithEnvFactory(a.newEnv),
		dispatch.WithTracer(a.tracing.Tracer()),
	)
	return a, nil
}

func (a *App) discover() (*registry.Discovery, error) {
	d, err := registry.Discover(a.cfg.ScriptsDir, a.builtins)
	if err != nil {
		return nil, err
	}
	if a.cfg.Strict {
		if err := d.Err(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Discovery returns the result of the startup scan.
func (a *App) Discovery() *registry.Discovery { return a.discovery }

// Dispatcher returns the dispatcher built over the startup catalog.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// ScriptConfig returns the merged configuration for entry.
func (a *App) ScriptConfig(ctx context.Context, entry script.Entry) (config.Values, error) {
	return a.configs.Load(ctx, entry.Name, entry.Defaults)
}

// Run executes the named script.
func (a *App) Run(ctx context.Context, name string) error {
	return a.dispatcher.Run(ctx, name)
}

// RunInteractive shows the menu and executes the chosen script. It returns
// the chosen name, which is empty when nothing was chosen.
func (a *App) RunInteractive(ctx context.Context) (string, error) {
	a.selected = ""
	err := a.dispatcher.RunInteractive(ctx)
	return a.selected, err
}

// Close flushes and stops tracing.
func (a *App) Close(ctx context.Context) error {
	return a.tracing.Shutdown(ctx)
}

func (a *App) newEnv(ctx context.Context, entry script.Entry, runID string) (*script.Env, error) {
	values, err := a.configs.Load(ctx, entry.Name, entry.Defaults)
	if err != nil {
		return nil, fmt.Errorf("loading config for %s: %w", entry.Name, err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	if a.announce {
		_, _ = fmt.Fprintln(a.stdout, styles.SuccessStyle.Render("Executing script: "+entry.Name))
	}

	return &script.Env{
		Name:    entry.Name,
		RunID:   runID,
		WorkDir: wd,
		Stdin:   a.stdin,
		Stdout:  a.stdout,
		Stderr:  a.stderr,
		Config:  values,
		Configs: a.configs,
		Output:  a.outputs.ForRun(entry.Name, runID),
		UI:      a.ui,
	}, nil
}

// selectScript shows the menu. With auto refresh on, manifest changes re-run
// discovery and refresh the options while the menu is open.
func (a *App) selectScript(ctx context.Context, entries []script.Entry) (script.Entry, error) {
	byName := indexEntries(entries)
	opts := menu.Options{In: a.stdin, Out: a.stdout, ForceFallback: a.forceFallback}

	if a.cfg.AutoRefresh {
		stop, changes, err := a.watch()
		if err != nil {
			log.Warn(log.CatWatcher, "auto refresh disabled", "error", err.Error())
		} else {
			defer stop()
			opts.Changes = changes
			opts.Reload = func() ([]menu.Item, error) {
				d, err := a.discover()
				if err != nil {
					return nil, err
				}
				a.configs.Invalidate(ctx)
				for _, p := range d.Problems {
					log.Warn(log.CatRegistry, "skipping script on reload", "name", p.Name, "error", p.Err.Error())
				}
				fresh := d.Catalog.Entries()
				byName = indexEntries(fresh)
				return menuItems(fresh), nil
			}
		}
	}

	it, err := menu.Run(ctx, MenuTitle, menuItems(entries), opts)
	if err != nil {
		return script.Entry{}, cancelled(err)
	}

	e, ok := byName[it.Value]
	if !ok {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		return script.Entry{}, &dispatch.NotFoundError{Name: it.Value, Available: names}
	}
	a.selected = e.Name
	return e, nil
}

func (a *App) watch() (func(), <-chan struct{}, error) {
	cfg := watcher.DefaultConfig(a.cfg.ScriptsDir)
	cfg.Filter = registry.IsManifestFile

	w, err := watcher.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, nil, err
	}
	return func() { _ = w.Stop() }, changes, nil
}

func indexEntries(entries []script.Entry) map[string]script.Entry {
	m := make(map[string]script.Entry, len(entries))
	for _, e := range entries {
		m[e.Name] = e
	}
	return m
}

func menuItems(entries []script.Entry) []menu.Item {
	items := make([]menu.Item, len(entries))
	for i, e := range entries {
		items[i] = menu.Item{Label: e.Name, Description: e.Description, Value: e.Name}
	}
	return items
}
