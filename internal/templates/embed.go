// Package templates embeds the sample script manifests written by `scli init`.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/zjrosen/scli/internal/log"
)

// scriptManifests holds one sample manifest per builtin script.
//
//go:embed scripts
var scriptManifests embed.FS

// ScriptsFS returns the embedded sample manifests rooted at the manifest files.
func ScriptsFS() fs.FS {
	sub, err := fs.Sub(scriptManifests, "scripts")
	if err != nil {
		panic(fmt.Sprintf("templates: %v", err))
	}
	return sub
}

// Names returns the embedded manifest file names, sorted.
func Names() []string {
	entries, err := fs.ReadDir(ScriptsFS(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// WriteResult reports what WriteScripts did with each manifest.
type WriteResult struct {
	Written []string
	Skipped []string
}

// WriteScripts copies the sample manifests into dir, creating it if needed.
// Files that already exist are left untouched.
func WriteScripts(dir string) (WriteResult, error) {
	var res WriteResult
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return res, fmt.Errorf("creating scripts directory: %w", err)
	}

	fsys := ScriptsFS()
	for _, name := range Names() {
		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			res.Skipped = append(res.Skipped, dst)
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return res, fmt.Errorf("reading embedded manifest %s: %w", name, err)
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			return res, fmt.Errorf("writing manifest %s: %w", dst, err)
		}
		log.Debug(log.CatConfig, "wrote sample manifest", "path", dst)
		res.Written = append(res.Written, dst)
	}
	return res, nil
}
