// Package script defines the contract between scli and the scripts it runs.
//
// A script is a compiled-in entry point (Main) registered under a key in a
// Builtins table. Discovery pairs each manifest found in the scripts directory
// with a registered entry point and records the result as an Entry in a Catalog.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultDescription is used when neither the manifest nor the builtin
// provides a description.
const DefaultDescription = "No description available"

// Sentinel errors shared by the registry, dispatcher and CLI.
var (
	ErrDirNotFound   = errors.New("scripts directory not found")
	ErrNotFound      = errors.New("script not found")
	ErrNoEntryPoint  = errors.New("no entry point registered")
	ErrEmptyCatalog  = errors.New("no scripts found in the scripts directory")
	ErrDuplicateName = errors.New("duplicate script name")
	ErrCancelled     = errors.New("cancelled")
)

// Main is the entry point every script implements. It receives no arguments
// beyond its environment and reports failure through the returned error.
type Main func(ctx context.Context, env *Env) error

// Config exposes a script's merged configuration. Keys may use dot notation
// to reach nested values (e.g. "api.base_url").
type Config interface {
	Get(key string) (any, bool)
	String(key, def string) string
	Int(key string, def int) int
	Bool(key string, def bool) bool
	Duration(key string, def time.Duration) time.Duration
}

// Outputs hands out paths under the script's output directory.
type Outputs interface {
	// Path returns the full path for filename inside this run's output
	// directory, creating the directory if needed.
	Path(filename string) (string, error)
	// Dir returns this run's output directory, creating it if needed.
	Dir() (string, error)
}

// ConfigWriter creates a script's own config file.
type ConfigWriter interface {
	// WriteScriptConfig writes sample values for name unless the file
	// already exists, and returns the file path either way.
	WriteScriptConfig(name string, sample map[string]any) (string, error)
}

// Choice is one option offered to the user by UI.Select.
type Choice struct {
	Label       string
	Value       string
	Description string
}

// UI lets scripts interact with the user. Implementations fall back to plain
// line input when stdin is not a terminal. All methods return ErrCancelled
// when the user aborts.
type UI interface {
	Select(ctx context.Context, title string, choices []Choice) (Choice, error)
	Input(ctx context.Context, prompt, def string) (string, error)
	Confirm(ctx context.Context, prompt string, def bool) (bool, error)
}

// Env is everything a script may touch. The dispatcher builds one per run.
type Env struct {
	Name    string
	RunID   string
	WorkDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config  Config
	Configs ConfigWriter
	Output  Outputs
	UI      UI
}

// Printf writes formatted output to the script's stdout.
func (e *Env) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.Stdout, format, args...)
}

// Println writes a line to the script's stdout.
func (e *Env) Println(args ...any) {
	_, _ = fmt.Fprintln(e.Stdout, args...)
}

// WriteSampleConfig creates this script's config file from sample unless it
// already exists.
func (e *Env) WriteSampleConfig(sample map[string]any) (string, error) {
	if e.Configs == nil {
		return "", errors.New("script config files are not available")
	}
	return e.Configs.WriteScriptConfig(e.Name, sample)
}

// LoadError records a manifest that could not be turned into a catalog entry.
type LoadError struct {
	Name string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading script %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
