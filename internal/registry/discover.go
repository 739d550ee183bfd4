// Package registry discovers scripts by scanning a directory of manifests and
// pairing each one with a compiled-in entry point.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/script"
)

// ErrInvalidManifests is returned by Discovery.Err when at least one manifest
// failed to load.
var ErrInvalidManifests = errors.New("invalid script manifests")

// Discovery is the result of one scan of the scripts directory.
type Discovery struct {
	Dir      string
	Catalog  *script.Catalog
	Problems []script.LoadError
}

// Problem returns the load problem recorded for name, if any.
func (d *Discovery) Problem(name string) (script.LoadError, bool) {
	if d == nil {
		return script.LoadError{}, false
	}
	for _, p := range d.Problems {
		if p.Name == name {
			return p, true
		}
	}
	return script.LoadError{}, false
}

// Err joins all load problems into one error wrapping ErrInvalidManifests.
// Returns nil when every manifest loaded.
func (d *Discovery) Err() error {
	if d == nil || len(d.Problems) == 0 {
		return nil
	}
	errs := make([]error, 0, len(d.Problems)+1)
	errs = append(errs, ErrInvalidManifests)
	for i := range d.Problems {
		errs = append(errs, &d.Problems[i])
	}
	return errors.Join(errs...)
}

// Discover scans the immediate files of dir for script manifests.
//
// A manifest that cannot be parsed or whose entry key is not registered is
// skipped and recorded in Problems; it never aborts the scan. A missing or
// non-directory dir fails with script.ErrDirNotFound.
func Discover(dir string, builtins *script.Builtins) (*Discovery, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", script.ErrDirNotFound, dir)
		}
		return nil, fmt.Errorf("checking scripts directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", script.ErrDirNotFound, dir)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scripts directory %s: %w", dir, err)
	}

	d := &Discovery{Dir: dir, Catalog: script.NewCatalog()}
	for _, f := range files {
		if f.IsDir() || !IsManifestFile(f.Name()) {
			continue
		}

		path := filepath.Join(dir, f.Name())
		name := ScriptName(f.Name())

		entry, err := loadEntry(path, name, builtins)
		if err == nil {
			err = d.Catalog.Add(entry)
		}
		if err != nil {
			log.Warn(log.CatRegistry, "skipping script", "name", name, "path", path, "error", err.Error())
			d.Problems = append(d.Problems, script.LoadError{Name: name, Path: path, Err: err})
			continue
		}
		log.Debug(log.CatRegistry, "loaded script", "name", name, "entry", entry.EntryKey)
	}

	log.Info(log.CatRegistry, "discovery complete", "dir", dir,
		"scripts", d.Catalog.Len(), "problems", len(d.Problems))
	return d, nil
}

func loadEntry(path, name string, builtins *script.Builtins) (script.Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: manifests come from the configured scripts directory
	if err != nil {
		return script.Entry{}, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := ParseManifest(path, data)
	if err != nil {
		return script.Entry{}, err
	}

	key := strings.TrimSpace(m.Entry)
	if key == "" {
		key = name
	}

	b, ok := builtins.Lookup(key)
	if !ok {
		return script.Entry{}, fmt.Errorf("entry %q: %w", key, script.ErrNoEntryPoint)
	}

	return script.Entry{
		Name:        name,
		Description: resolveDescription(m.Description, b.Description),
		EntryKey:    key,
		Help:        m.Help,
		Source:      path,
		Defaults:    m.Config,
		Main:        b.Main,
	}, nil
}

// resolveDescription returns the first non-blank candidate folded onto one
// line, so block scalars still list as a single row.
func resolveDescription(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.Join(strings.Fields(c), " "); s != "" {
			return s
		}
	}
	return script.DefaultDescription
}
