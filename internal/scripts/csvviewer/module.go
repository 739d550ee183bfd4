// Package csvviewer shows a CSV file in an interactive, filterable table.
package csvviewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/ui/styles"
	"github.com/zjrosen/scli/internal/ui/tty"
)

// Key is the builtin key and default script name.
const Key = "csv_viewer"

// Defaults, overridable through the script config.
const (
	DefaultPageSize    = 1000
	DefaultPreviewRows = 20
)

// Module implements the script.Module interface for this package.
type Module struct{}

// Register registers the entry point.
func (m *Module) Register(b *script.Builtins) {
	b.Register(Key, "Interactive CSV viewer with filtering and paging", Run)
}

// Run asks for a CSV file and shows it. Without a terminal it prints a preview
// of the first rows instead.
func Run(ctx context.Context, env *script.Env) error {
	env.Println("CSV Viewer")
	env.Println(strings.Repeat("=", 50))

	pageSize, previewRows, path := DefaultPageSize, DefaultPreviewRows, ""
	if env.Config != nil {
		pageSize = env.Config.Int("page_size", DefaultPageSize)
		previewRows = env.Config.Int("preview_rows", DefaultPreviewRows)
		path = env.Config.String("file", "")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if path == "" {
		chosen, err := ChooseFile(ctx, env, env.WorkDir)
		if errors.Is(err, script.ErrCancelled) {
			env.Println("No file selected.")
			return nil
		}
		if err != nil {
			return err
		}
		path = chosen
	} else if !filepath.IsAbs(path) && env.WorkDir != "" {
		path = filepath.Join(env.WorkDir, path)
	}

	data, err := Load(path)
	if err != nil {
		return err
	}
	log.Info(log.CatScript, "loaded csv", "path", path, "rows", len(data.Rows),
		"columns", len(data.Columns), "separator", SeparatorName(data.Separator), "encoding", data.Encoding)
	env.Printf("Loaded %s (%d rows, %d columns, separator '%s', %s)\n",
		filepath.Base(path), len(data.Rows), len(data.Columns), SeparatorName(data.Separator), data.Encoding)

	if !tty.Interactive(env.Stdin, env.Stdout) {
		Preview(env, data, previewRows)
		return nil
	}

	_, err = tea.NewProgram(NewModel(data, pageSize),
		tea.WithContext(ctx),
		tea.WithInput(programInput(env)),
		tea.WithOutput(env.Stdout),
		tea.WithAltScreen(),
	).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("running csv viewer: %w", err)
	}
	return ctx.Err()
}

// programInput is the stream handed to the table program. It must be the
// original stdin so bubbletea can put a terminal into raw mode.
func programInput(env *script.Env) io.Reader {
	return tty.Source(env.Stdin)
}

// Preview prints the header and up to n rows as aligned plain text.
func Preview(env *script.Env, data *Data, n int) {
	rows := data.Rows
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	widths := make([]int, len(data.Columns))
	for i, c := range data.Columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], minColumnWidth), maxColumnWidth)
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = styles.PadRight(c, widths[i])
		}
		return strings.TrimRight(strings.Join(parts, " | "), " ")
	}

	env.Println(line(data.Columns))
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	env.Println(strings.Join(sep, "-+-"))
	for _, r := range rows {
		env.Println(line(r))
	}
	if len(rows) < len(data.Rows) {
		env.Printf("... %d more rows\n", len(data.Rows)-len(rows))
	}
}
