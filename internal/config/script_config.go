package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/scli/internal/cachemanager"
	"github.com/zjrosen/scli/internal/log"
)

// ScriptConfigLoader builds the merged configuration handed to a script.
//
// Sources, lowest precedence first: the manifest's config section, the
// global scripts.<name> section, then config_<name>.yaml in the project root.
// Results are memoized until Invalidate is called.
type ScriptConfigLoader struct {
	root   string
	global map[string]map[string]any
	cache  *cachemanager.ReadThroughCache[string, Values, scriptConfigRequest]
}

type scriptConfigRequest struct {
	name     string
	defaults map[string]any
}

// NewScriptConfigLoader creates a loader rooted at root. An empty root means
// the working directory.
func NewScriptConfigLoader(root string, global map[string]map[string]any) *ScriptConfigLoader {
	if root == "" {
		root = "."
	}
	l := &ScriptConfigLoader{root: root, global: global}
	store := cachemanager.NewInMemoryCacheManager[string, Values](
		"script-config", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval)
	l.cache = cachemanager.NewReadThroughCache[string, Values, scriptConfigRequest](store, l.load, false)
	return l
}

// ProjectRoot derives the project root from the config file in use: its
// directory, or the parent when the file lives in a .scli directory.
func ProjectRoot(configFile string) string {
	if configFile == "" {
		return "."
	}
	dir := filepath.Dir(configFile)
	if filepath.Base(dir) == ".scli" {
		return filepath.Dir(dir)
	}
	return dir
}

// Load returns the merged configuration for the named script.
func (l *ScriptConfigLoader) Load(ctx context.Context, name string, defaults map[string]any) (Values, error) {
	return l.cache.Get(ctx, name, scriptConfigRequest{name: name, defaults: defaults}, cachemanager.NoExpiration)
}

// Invalidate forgets cached results for names, or for every script when
// names is empty.
func (l *ScriptConfigLoader) Invalidate(ctx context.Context, names ...string) {
	_ = l.cache.Invalidate(ctx, names...)
}

// FilePath returns the path of the per-script config file for name, whether
// or not it exists. A .yml file is used when present and no .yaml file is.
func (l *ScriptConfigLoader) FilePath(name string) string {
	yamlPath := filepath.Join(l.root, "config_"+name+".yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	ymlPath := filepath.Join(l.root, "config_"+name+".yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath
	}
	return yamlPath
}

func (l *ScriptConfigLoader) load(_ context.Context, req scriptConfigRequest) (Values, error) {
	fileConfig, err := l.readFile(req.name)
	if err != nil {
		return nil, err
	}

	merged := Merge(req.defaults, l.globalSection(req.name), fileConfig)
	log.Debug(log.CatConfig, "Merged script config",
		"script", req.name, "keys", len(merged), "config", log.FormatFields(log.MaskSensitive(merged)))
	return merged, nil
}

// globalSection returns scripts.<name>. Viper lowercases map keys, so a
// case-insensitive match is accepted when there is no exact one.
func (l *ScriptConfigLoader) globalSection(name string) map[string]any {
	if section, ok := l.global[name]; ok {
		return section
	}
	for k, section := range l.global {
		if strings.EqualFold(k, name) {
			return section
		}
	}
	return nil
}

func (l *ScriptConfigLoader) readFile(name string) (map[string]any, error) {
	path := l.FilePath(name)
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is built from the project root and script name
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug(log.CatConfig, "No script config file", "script", name, "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		log.ErrorErr(log.CatConfig, "Ignoring unreadable script config", err, "script", name, "path", path)
		return nil, nil
	}
	log.Info(log.CatConfig, "Loaded script config", "script", name, "path", path)
	return out, nil
}

// WriteScriptConfig creates config_<name>.yaml with sample values unless the
// file already exists. It returns the file path either way.
func (l *ScriptConfigLoader) WriteScriptConfig(name string, sample map[string]any) (string, error) {
	path := l.FilePath(name)
	if _, err := os.Stat(path); err == nil {
		log.Info(log.CatConfig, "Script config already exists", "path", path)
		return path, nil
	}

	data, err := yaml.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("encoding script config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing script config: %w", err)
	}
	l.Invalidate(context.Background(), name)
	log.Info(log.CatConfig, "Created script config", "path", path)
	return path, nil
}
