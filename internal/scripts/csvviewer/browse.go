package csvviewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/ui/styles"
)

const (
	choiceParent = ".."
	choiceManual = "\x00manual"
	choiceCancel = "\x00cancel"
)

// ChooseFile lets the user browse from dir to a .csv file, or type a path.
// It returns script.ErrCancelled when the user gives up.
func ChooseFile(ctx context.Context, env *script.Env, dir string) (string, error) {
	if env.UI == nil {
		return "", errors.New("csv_viewer needs a file: set the \"file\" config key")
	}
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		choices, err := DirChoices(dir)
		if err != nil {
			return "", fmt.Errorf("browsing %s: %w", dir, err)
		}

		env.Printf("\nCurrent directory: %s\n", dir)
		picked, err := env.UI.Select(ctx, "Select CSV file:", choices)
		if err != nil {
			return "", err
		}

		switch picked.Value {
		case choiceCancel:
			return "", script.ErrCancelled
		case choiceManual:
			typed, err := env.UI.Input(ctx, "Enter full path to CSV file", "")
			if err != nil {
				return "", err
			}
			typed = strings.TrimSpace(typed)
			if typed == "" {
				continue
			}
			if !filepath.IsAbs(typed) {
				typed = filepath.Join(dir, typed)
			}
			if info, err := os.Stat(typed); err != nil || info.IsDir() || !IsCSV(typed) {
				env.Println("Invalid CSV file path")
				continue
			}
			return typed, nil
		case choiceParent:
			dir = filepath.Dir(dir)
		default:
			target := filepath.Join(dir, picked.Value)
			info, err := os.Stat(target)
			if err != nil {
				return "", err
			}
			if info.IsDir() {
				dir = target
				continue
			}
			return target, nil
		}
	}
}

// DirChoices lists the parent entry, subdirectories, then .csv files of dir,
// followed by the manual-entry and cancel options.
func DirChoices(dir string) ([]script.Choice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var choices []script.Choice
	if filepath.Dir(dir) != dir {
		choices = append(choices, script.Choice{Label: "..", Value: choiceParent, Description: "Parent directory"})
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			choices = append(choices, script.Choice{Label: e.Name() + "/", Value: e.Name(), Description: "Directory"})
		}
	}
	for _, e := range entries {
		if e.IsDir() || !IsCSV(e.Name()) {
			continue
		}
		desc := "CSV File"
		if info, err := e.Info(); err == nil {
			desc = fmt.Sprintf("CSV File (%s)", styles.FormatSize(info.Size()))
		}
		choices = append(choices, script.Choice{Label: e.Name(), Value: e.Name(), Description: desc})
	}
	return append(choices,
		script.Choice{Label: "Enter path manually", Value: choiceManual, Description: "Type the full file path"},
		script.Choice{Label: "Cancel", Value: choiceCancel, Description: "Cancel file selection"},
	), nil
}

// IsCSV reports whether name has a .csv extension.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
