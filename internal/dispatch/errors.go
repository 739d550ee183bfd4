package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/scli/internal/script"
)

// ErrCancelled is returned by RunInteractive when the user backs out of the
// menu. No script has run.
var ErrCancelled = script.ErrCancelled

// NotFoundError reports a name that is not in the catalog.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("script '%s' not found", e.Name)
	}
	return fmt.Sprintf("script '%s' not found; available scripts: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// Is matches script.ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == script.ErrNotFound
}

// LoadFailedError reports a name whose manifest exists but could not be loaded.
type LoadFailedError struct {
	Problem script.LoadError
}

func (e *LoadFailedError) Error() string {
	return fmt.Sprintf("script '%s' failed to load: %v", e.Problem.Name, e.Problem.Err)
}

// Is matches script.ErrNotFound, since the name is not runnable.
func (e *LoadFailedError) Is(target error) bool {
	return target == script.ErrNotFound
}

func (e *LoadFailedError) Unwrap() error { return e.Problem.Err }

// IsSelectionError reports whether err came from resolving a name rather than
// from running a script.
func IsSelectionError(err error) bool {
	var nf *NotFoundError
	var lf *LoadFailedError
	return errors.As(err, &nf) || errors.As(err, &lf) || errors.Is(err, script.ErrEmptyCatalog)
}
