// Package dispatch resolves script names against a catalog and runs them.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/tracing"
)

// Selector asks the user to pick one of entries. It returns ErrCancelled
// when the user backs out.
type Selector interface {
	Select(ctx context.Context, entries []script.Entry) (script.Entry, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(ctx context.Context, entries []script.Entry) (script.Entry, error)

func (f SelectorFunc) Select(ctx context.Context, entries []script.Entry) (script.Entry, error) {
	return f(ctx, entries)
}

// EnvFactory builds the environment for one run.
type EnvFactory func(ctx context.Context, entry script.Entry, runID string) (*script.Env, error)

// Dispatcher runs scripts from a catalog. It is not safe for concurrent use;
// scli runs one script per process.
type Dispatcher struct {
	catalog  *script.Catalog
	problems []script.LoadError
	selector Selector
	newEnv   EnvFactory
	tracer   trace.Tracer
	newRunID func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProblems records manifests that failed to load so Run can report them.
func WithProblems(problems []script.LoadError) Option {
	return func(d *Dispatcher) { d.problems = problems }
}

// WithSelector sets the interactive selector.
func WithSelector(s Selector) Option {
	return func(d *Dispatcher) { d.selector = s }
}

// WithEnvFactory sets how run environments are built.
func WithEnvFactory(f EnvFactory) Option {
	return func(d *Dispatcher) { d.newEnv = f }
}

// WithTracer sets the tracer for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(f func() string) Option {
	return func(d *Dispatcher) { d.newRunID = f }
}

// New creates a dispatcher over catalog.
func New(catalog *script.Catalog, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog:  catalog,
		newEnv:   StdEnv,
		tracer:   noop.NewTracerProvider().Tracer(tracing.ServiceName),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StdEnv wires a run to the process's standard streams with the manifest's
// default config. It has no UI and no output directory.
func StdEnv(_ context.Context, entry script.Entry, runID string) (*script.Env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return &script.Env{
		Name:    entry.Name,
		RunID:   runID,
		WorkDir: wd,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  config.Merge(entry.Defaults),
	}, nil
}

// Catalog returns the catalog the dispatcher resolves names against.
func (d *Dispatcher) Catalog() *script.Catalog { return d.catalog }

// Resolve looks name up without running it.
func (d *Dispatcher) Resolve(name string) (script.Entry, error) {
	if e, ok := d.catalog.Lookup(name); ok {
		return e, nil
	}
	for _, p := range d.problems {
		if p.Name == name {
			return script.Entry{}, &LoadFailedError{Problem: p}
		}
	}
	return script.Entry{}, &NotFoundError{Name: name, Available: d.catalog.Names()}
}

// Run executes the named script synchronously. An unknown name returns a
// *NotFoundError and runs nothing. The script's own error is returned as is.
func (d *Dispatcher) Run(ctx context.Context, name string) error {
	entry, err := d.Resolve(name)
	if err != nil {
		log.Warn(log.CatDispatch, "Script not runnable", "name", name, "error", err.Error())
		return err
	}
	return d.run(ctx, entry, false)
}

// RunInteractive lets the user pick a script, then runs it. Cancelling
// returns ErrCancelled without running anything.
func (d *Dispatcher) RunInteractive(ctx context.Context) error {
	if d.catalog.Len() == 0 {
		return script.ErrEmptyCatalog
	}
	if d.selector == nil {
		return fmt.Errorf("no interactive selector configured")
	}

	ctx, span := d.tracer.Start(ctx, tracing.SpanSelect)
	entry, err := d.selector.Select(ctx, d.catalog.Entries())
	if err != nil {
		cancelled := errors.Is(err, ErrCancelled)
		span.SetAttributes(attribute.Bool(tracing.AttrCancelled, cancelled))
		if !cancelled {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if cancelled {
			log.Info(log.CatDispatch, "Selection cancelled")
			return ErrCancelled
		}
		return fmt.Errorf("selecting script: %w", err)
	}
	span.SetAttributes(attribute.String(tracing.AttrScriptName, entry.Name))
	span.End()

	// The menu may have reloaded the catalog while open, so the entry it
	// returned is run directly rather than looked up again.
	if entry.Main == nil {
		return d.Run(ctx, entry.Name)
	}
	return d.run(ctx, entry, true)
}

func (d *Dispatcher) run(ctx context.Context, entry script.Entry, interactive bool) error {
	runID := d.newRunID()
	ctx, span := d.tracer.Start(ctx, tracing.SpanScriptRun, trace.WithAttributes(
		attribute.String(tracing.AttrScriptName, entry.Name),
		attribute.String(tracing.AttrScriptEntry, entry.EntryKey),
		attribute.String(tracing.AttrRunID, runID),
		attribute.Bool(tracing.AttrInteractive, interactive),
	))
	defer span.End()

	env, err := d.newEnv(ctx, entry, runID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("preparing %s: %w", entry.Name, err)
	}
	span.AddEvent(tracing.EventConfigLoaded)

	log.Info(log.CatDispatch, "Executing script", "name", entry.Name, "entry", entry.EntryKey, "run_id", runID)
	start := time.Now()

	err = entry.Main(ctx, env)

	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(tracing.AttrErrorType, fmt.Sprintf("%T", err)))
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatDispatch, "Script failed", err, "name", entry.Name, "run_id", runID, "duration", elapsed.String())
		return err
	}

	span.SetStatus(codes.Ok, "")
	log.Info(log.CatDispatch, "Script finished", "name", entry.Name, "run_id", runID, "duration", elapsed.String())
	return nil
}
