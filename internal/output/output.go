// Package output lays out the files scripts write:
// <base>/<script>/<subfolder>/<file>.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/scli/internal/log"
)

// TimestampLayout names per-run subfolders.
const TimestampLayout = "2006-01-02-15-04-05"

// Manager resolves output paths below a base directory.
type Manager struct {
	base string
	now  func() time.Time
}

// NewManager creates a manager rooted at base ("output" when empty).
func NewManager(base string) *Manager {
	if base == "" {
		base = "output"
	}
	return &Manager{base: base, now: time.Now}
}

// Base returns the base output directory.
func (m *Manager) Base() string { return m.base }

// Path returns the path for filename and creates its directory.
// An empty subfolder writes directly under the script directory.
func (m *Manager) Path(scriptName, filename, subfolder string) (string, error) {
	if err := checkName("filename", filename); err != nil {
		return "", err
	}
	dir, err := m.Dir(scriptName, subfolder)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

// Dir creates and returns <base>/<script>/<subfolder>.
func (m *Manager) Dir(scriptName, subfolder string) (string, error) {
	if err := checkName("script name", scriptName); err != nil {
		return "", err
	}
	dir := filepath.Join(m.base, scriptName)
	if subfolder != "" {
		if err := checkName("subfolder", subfolder); err != nil {
			return "", err
		}
		dir = filepath.Join(dir, subfolder)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return dir, nil
}

// ForRun returns the outputs of one script run. Its directory is named after
// the start time plus a short run ID so concurrent runs never collide. Nothing
// is created until a script asks for a path.
func (m *Manager) ForRun(scriptName, runID string) *Run {
	sub := m.now().Format(TimestampLayout)
	if short := shortID(runID); short != "" {
		sub += "-" + short
	}
	return &Run{manager: m, script: scriptName, subfolder: sub}
}

// Run hands out paths inside a single run's directory.
type Run struct {
	manager   *Manager
	script    string
	subfolder string

	once sync.Once
	dir  string
	err  error
}

// Dir returns the run directory, creating it on first use.
func (r *Run) Dir() (string, error) {
	r.once.Do(func() {
		r.dir, r.err = r.manager.Dir(r.script, r.subfolder)
		if r.err == nil {
			log.Debug(log.CatScript, "Created output directory", "script", r.script, "dir", r.dir)
		}
	})
	return r.dir, r.err
}

// Path returns the full path for filename inside the run directory.
func (r *Run) Path(filename string) (string, error) {
	if err := checkName("filename", filename); err != nil {
		return "", err
	}
	dir, err := r.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

// checkName rejects names that would escape the output tree.
func checkName(what, name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid %s %q", what, name)
	}
	return nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
