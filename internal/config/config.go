// Package config provides configuration types and defaults for scli.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/scli/internal/log"
)

// Config holds all configuration options for scli.
type Config struct {
	ScriptsDir  string                    `mapstructure:"scripts_dir"`
	OutputDir   string                    `mapstructure:"output_dir"`
	AutoRefresh bool                      `mapstructure:"auto_refresh"` // Reload the menu when the scripts directory changes
	Strict      bool                      `mapstructure:"strict"`       // Treat any manifest load problem as fatal
	Log         LogConfig                 `mapstructure:"log"`
	UI          UIConfig                  `mapstructure:"ui"`
	Tracing     TracingConfig             `mapstructure:"tracing"`
	Scripts     map[string]map[string]any `mapstructure:"scripts"` // Per-script configuration keyed by script name
}

// LogConfig holds debug log settings.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"` // debug, info, warn, error
	File    string `mapstructure:"file"`  // Default: logs/scli_YYYYMMDD.log
}

// UIConfig holds presentation options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
	ShowProblems  bool   `mapstructure:"show_problems"`  // Print manifest load problems as warnings
}

// TracingConfig holds distributed tracing configuration for script runs.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/scli/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultConfigPath is where `scli init` writes the config file.
const DefaultConfigPath = ".scli/config.yaml"

// DefaultLogFile returns logs/scli_YYYYMMDD.log for the given day.
func DefaultLogFile(now time.Time) string {
	return filepath.Join("logs", fmt.Sprintf("scli_%s.log", now.Format("20060102")))
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/scli/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "scli", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		ScriptsDir:  "scripts",
		OutputDir:   "output",
		AutoRefresh: false,
		Strict:      false,
		Log: LogConfig{
			Enabled: false,
			Level:   "info",
			File:    "", // Derived from the current date at startup
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
			ShowProblems:  true,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.ScriptsDir == "" {
		return fmt.Errorf("scripts_dir must not be empty")
	}
	if err := ValidateLog(c.Log); err != nil {
		return err
	}
	if c.UI.MarkdownStyle != "" && c.UI.MarkdownStyle != "dark" && c.UI.MarkdownStyle != "light" {
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", c.UI.MarkdownStyle)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateLog checks log configuration for errors.
func ValidateLog(l LogConfig) error {
	switch l.Level {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", l.Level)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# scli configuration

# Directory scanned for script manifests (*.yaml, *.yml, *.toml).
# Files starting with "_" or "." are ignored.
scripts_dir: scripts

# Base directory for files written by scripts: <output_dir>/<script>/<run>/
output_dir: output

# Reload the selection menu when manifests change
auto_refresh: false

# Fail instead of warning when a manifest cannot be loaded
strict: false

# Debug logging (also enabled by --debug or SCLI_DEBUG=1)
log:
  enabled: false
  level: info        # debug, info, warn, error
  # file: logs/scli_20250101.log

ui:
  markdown_style: dark   # Style for "scli info <script>": dark or light
  show_problems: true    # Print manifest load problems as warnings

# Distributed tracing of script runs
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/scli/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Per-script configuration, merged over the manifest's config section.
# A config_<script>.yaml file next to this file takes precedence.
scripts:
  hello_world:
    greeting: Hello
    name: World
  # network_tools:
  #   timeout: 3s
  # csv_viewer:
  #   page_size: 1000
  # cobol_processor:
  #   copybook: customer.cpy
  #   data_file: customer.dat
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
