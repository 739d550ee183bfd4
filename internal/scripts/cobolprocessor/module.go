// Package cobolprocessor parses fixed-width data files using the record
// layout described by a COBOL copybook.
package cobolprocessor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/ui/styles"
)

// Key is the builtin key and default script name.
const Key = "cobol_processor"

// DefaultPreviewRecords is how many records are printed before the summary.
const DefaultPreviewRecords = 5

var (
	copybookExts = []string{".cpy", ".cbl", ".cob", ".copy"}
	dataExts     = []string{".dat", ".txt", ".data"}
)

// SampleConfig is written by the "Create sample config" action.
var SampleConfig = map[string]any{
	"copybook":        "customer.cpy",
	"data_file":       "customer.dat",
	"preview_records": DefaultPreviewRecords,
	"write_report":    false,
}

// Menu actions.
const (
	actionManual = "manual"
	actionBrowse = "browse"
	actionSample = "sample"
	actionExit   = "exit"
)

// Module implements the script.Module interface for this package.
type Module struct{}

// Register registers the entry point.
func (m *Module) Register(b *script.Builtins) {
	b.Register(Key, "Parse fixed-width data files with COBOL copybooks", Run)
}

// Options controls a single processing pass.
type Options struct {
	Preview     int
	WriteReport bool
	// Interactive asks before parsing the data file.
	Interactive bool
}

// Run processes the configured copybook and data file directly, or offers a
// menu when either is missing.
func Run(ctx context.Context, env *script.Env) error {
	env.Println("COBOL Processor")
	env.Println(strings.Repeat("=", 50))

	opts := Options{Preview: DefaultPreviewRecords}
	copybook, dataFile := "", ""
	if env.Config != nil {
		opts.Preview = env.Config.Int("preview_records", DefaultPreviewRecords)
		opts.WriteReport = env.Config.Bool("write_report", false)
		copybook = env.Config.String("copybook", "")
		dataFile = env.Config.String("data_file", "")
	}

	if copybook != "" && dataFile != "" {
		return Process(ctx, env, resolve(env, copybook), resolve(env, dataFile), opts)
	}
	if env.UI == nil {
		return errors.New("cobol_processor needs files: set the \"copybook\" and \"data_file\" config keys")
	}

	opts.Interactive = true
	for {
		err := runAction(ctx, env, opts)
		if errors.Is(err, errExit) || errors.Is(err, script.ErrCancelled) {
			env.Println("Goodbye!")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			env.Println(styles.ErrorStyle.Render("Error: " + err.Error()))
		}

		again, err := env.UI.Confirm(ctx, "Would you like to perform another action?", false)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || !again {
			env.Println("Goodbye!")
			return nil
		}
	}
}

var errExit = errors.New("exit")

func runAction(ctx context.Context, env *script.Env, opts Options) error {
	picked, err := env.UI.Select(ctx, "What would you like to do?", []script.Choice{
		{Label: "Select files manually", Value: actionManual},
		{Label: "Browse directory for files", Value: actionBrowse},
		{Label: "Create sample config", Value: actionSample},
		{Label: "Exit", Value: actionExit},
	})
	if err != nil {
		return err
	}

	switch picked.Value {
	case actionManual:
		copybook, err := env.UI.Input(ctx, "Path to copybook file", "")
		if err != nil {
			return err
		}
		dataFile, err := env.UI.Input(ctx, "Path to data file", "")
		if err != nil {
			return err
		}
		return Process(ctx, env, resolve(env, copybook), resolve(env, dataFile), opts)
	case actionBrowse:
		dir, err := env.UI.Input(ctx, "Directory to search", env.WorkDir)
		if err != nil {
			return err
		}
		copybook, dataFile, err := Browse(ctx, env, resolve(env, dir))
		if err != nil {
			return err
		}
		return Process(ctx, env, copybook, dataFile, opts)
	case actionSample:
		path, err := env.WriteSampleConfig(SampleConfig)
		if err != nil {
			return err
		}
		env.Printf("Sample config: %s\n", path)
		return nil
	default:
		return errExit
	}
}

// Browse searches dir for copybooks and data files and lets the user pick
// one of each. A single match is selected without asking.
func Browse(ctx context.Context, env *script.Env, dir string) (string, string, error) {
	copybooks, data, err := FindFiles(dir)
	if err != nil {
		return "", "", fmt.Errorf("searching %s: %w", dir, err)
	}
	copybook, err := pick(ctx, env, dir, "copybook", copybooks)
	if err != nil {
		return "", "", err
	}
	dataFile, err := pick(ctx, env, dir, "data file", data)
	if err != nil {
		return "", "", err
	}
	return copybook, dataFile, nil
}

func pick(ctx context.Context, env *script.Env, dir, what string, paths []string) (string, error) {
	switch len(paths) {
	case 0:
		return "", fmt.Errorf("no %s found in %s", what, dir)
	case 1:
		env.Printf("Using %s: %s\n", what, paths[0])
		return paths[0], nil
	}

	choices := make([]script.Choice, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = p
		}
		choices[i] = script.Choice{Label: rel, Value: p}
	}
	picked, err := env.UI.Select(ctx, "Select "+what+":", choices)
	if err != nil {
		return "", err
	}
	return picked.Value, nil
}

// FindFiles walks dir and returns copybooks and data files by extension,
// sorted by path. Hidden directories are skipped.
func FindFiles(dir string) ([]string, []string, error) {
	var copybooks, data []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case hasExt(copybookExts, ext):
			copybooks = append(copybooks, path)
		case hasExt(dataExts, ext):
			data = append(data, path)
		}
		return nil
	})
	sort.Strings(copybooks)
	sort.Strings(data)
	return copybooks, data, err
}

func hasExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// Process prints the copybook structure and a preview of the parsed data
// file, optionally writing every record to a CSV report.
func Process(ctx context.Context, env *script.Env, copybookPath, dataPath string, opts Options) error {
	f, err := os.Open(copybookPath) //nolint:gosec // G304: path chosen by the user
	if err != nil {
		return fmt.Errorf("opening copybook: %w", err)
	}
	cb, err := ParseCopybook(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(copybookPath), err)
	}

	PrintStructure(env, cb)

	if opts.Interactive && env.UI != nil {
		ok, err := env.UI.Confirm(ctx, "Parse the data file using this structure?", true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	records, encoding, err := ReadRecords(dataPath)
	if err != nil {
		return err
	}
	fields := cb.Elementary()
	log.Info(log.CatScript, "parsed cobol data", "copybook", copybookPath, "data", dataPath,
		"records", len(records), "fields", len(fields), "encoding", encoding)

	env.Printf("\nRecords from %s (%s):\n", filepath.Base(dataPath), encoding)
	shown := records
	if opts.Preview >= 0 && len(shown) > opts.Preview {
		shown = shown[:opts.Preview]
	}
	for i, rec := range shown {
		env.Printf("\nRecord %d:\n", i+1)
		for _, v := range Decode(rec, fields) {
			env.Printf("  %s: %s\n", v.Field.Name, v.Text)
		}
	}
	if more := len(records) - len(shown); more > 0 {
		env.Printf("\n... and %d more records\n", more)
	}
	env.Println(styles.SuccessStyle.Render(fmt.Sprintf("Successfully parsed %d records", len(records))))

	if opts.WriteReport {
		return writeReport(env, dataPath, fields, records)
	}
	return nil
}

func writeReport(env *script.Env, dataPath string, fields []Field, records []string) error {
	if env.Output == nil {
		return errors.New("no output directory available for the report")
	}
	name := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath)) + ".csv"
	path, err := env.Output.Path(name)
	if err != nil {
		return err
	}
	out, err := os.Create(path) //nolint:gosec // G304: path under the output directory
	if err != nil {
		return err
	}
	if err := WriteCSV(out, fields, records); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Info(log.CatScript, "wrote cobol report", "script", env.Name, "path", path)
	env.Printf("Report written to %s\n", path)
	return nil
}

// PrintStructure lists every field with its columns, one per line and
// indented by nesting.
func PrintStructure(env *script.Env, cb *Copybook) {
	env.Printf("\nCopybook structure (record length %d):\n", cb.RecordLength())
	env.Printf("%s %s %s %s\n",
		styles.PadRight("Field", 32), styles.PadRight("PIC", 12),
		styles.PadRight("Start", 6), "Length")

	var open []int
	for _, f := range cb.Fields {
		for len(open) > 0 && open[len(open)-1] >= f.Level {
			open = open[:len(open)-1]
		}
		name := strings.Repeat("  ", len(open)) + fmt.Sprintf("%02d %s", f.Level, f.Name)
		open = append(open, f.Level)

		pic := f.Picture
		if pic == "" {
			pic = "(group)"
		}
		env.Printf("%s %s %s %d\n",
			styles.PadRight(styles.TruncateString(name, 32), 32), styles.PadRight(pic, 12),
			styles.PadRight(fmt.Sprint(f.Start), 6), f.Length)
	}
	for _, f := range cb.Redefinitions() {
		env.Printf("Note: %s redefines %s\n", f.Name, f.Redefines)
	}
}

func resolve(env *script.Env, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) || env.WorkDir == "" {
		return path
	}
	return filepath.Join(env.WorkDir, path)
}
