// Package filecounter counts the files in the working directory by extension.
package filecounter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/script"
)

// Key is the builtin key and default script name.
const Key = "file_counter"

// NoExtension labels files whose name has no extension.
const NoExtension = "no extension"

// Module implements the script.Module interface for this package.
type Module struct{}

// Register registers the entry point.
func (m *Module) Register(b *script.Builtins) {
	b.Register(Key, "Count files by extension in current directory", Run)
}

// Count is the number of files sharing one extension.
type Count struct {
	Extension string
	Files     int
}

// CountFiles counts the regular files directly inside dir, grouped by
// lower-cased extension and sorted by extension.
func CountFiles(dir string) ([]Count, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	byExt := make(map[string]int)
	total := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == "" || ext == e.Name() {
			ext = NoExtension
		}
		byExt[ext]++
		total++
	}

	counts := make([]Count, 0, len(byExt))
	for ext, n := range byExt {
		counts = append(counts, Count{Extension: ext, Files: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Extension < counts[j].Extension })
	return counts, total, nil
}

// Run prints the counts and optionally writes them to the run's output directory.
func Run(_ context.Context, env *script.Env) error {
	dir := env.WorkDir
	if dir == "" {
		dir = "."
	}

	counts, total, err := CountFiles(dir)
	if err != nil {
		return err
	}

	divider := strings.Repeat("=", 50)
	env.Printf("Counting files in: %s\n", dir)
	env.Println(divider)

	if total == 0 {
		env.Println("No files found in the current directory.")
		return nil
	}

	var report strings.Builder
	for _, c := range counts {
		fmt.Fprintf(&report, "  %s: %d files\n", c.Extension, c.Files)
	}
	env.Println("File counts by extension:")
	env.Printf("%s", report.String())
	env.Println(divider)
	env.Printf("Total files: %d\n", total)

	if env.Config == nil || !env.Config.Bool("write_report", false) || env.Output == nil {
		return nil
	}
	path, err := env.Output.Path("counts.txt")
	if err != nil {
		return fmt.Errorf("preparing report: %w", err)
	}
	report.WriteString(fmt.Sprintf("Total files: %d\n", total))
	if err := os.WriteFile(path, []byte(report.String()), 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	log.Info(log.CatScript, "wrote file count report", "script", env.Name, "path", path)
	env.Printf("Report saved to: %s\n", path)
	return nil
}
