package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/scli/internal/app"
	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/dispatch"
	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/presentation"
	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/tracing"
	"github.com/zjrosen/scli/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// errReported marks an error whose message was already printed.
var errReported = errors.New("error already reported")

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	scriptName string
	debug      bool
	logFile    string
	logCleanup func()

	// builtins overrides the compiled-in scripts when set.
	builtins *script.Builtins
)

var rootCmd = &cobra.Command{
	Use:   "scli",
	Short: "A CLI tool for executing selectable scripts",
	Long: `scli discovers scripts in a scripts directory and runs them.

Run without a command for an interactive menu, or pick a script directly
with -s <script_name>.`,
	Version:           version,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScript(cmd, scriptName)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .scli/config.yaml or ~/.config/scli/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"write debug logs (also SCLI_DEBUG=1)")
	rootCmd.PersistentFlags().Bool("strict", false,
		"fail when any script manifest cannot be loaded")
	rootCmd.PersistentFlags().String("scripts-dir", "",
		"directory containing script manifests")
	rootCmd.Flags().StringVarP(&scriptName, "script", "s", "",
		"name of the script to run directly")
}

func initConfig() {
	// Bind flags to viper
	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	_ = viper.BindPFlag("scripts_dir", rootCmd.PersistentFlags().Lookup("scripts-dir"))

	defaults := config.Defaults()
	viper.SetDefault("scripts_dir", defaults.ScriptsDir)
	viper.SetDefault("output_dir", defaults.OutputDir)
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("strict", defaults.Strict)
	viper.SetDefault("log.enabled", defaults.Log.Enabled)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.show_problems", defaults.UI.ShowProblems)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	viper.SetEnvPrefix("SCLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .scli/config.yaml (current directory)
		// 2. ~/.config/scli/config.yaml (user config)
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			viper.SetConfigFile(config.DefaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "scli"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// No config file is fine: `scli init` creates one on request.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			_, _ = fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setup validates the configuration and opens the debug log.
func setup(_ *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	envDebug := cast.ToBool(os.Getenv("SCLI_DEBUG"))
	if !debug && !envDebug && !cfg.Log.Enabled {
		return nil
	}

	logFile = os.Getenv("SCLI_LOG")
	if logFile == "" {
		logFile = cfg.Log.File
	}
	if logFile == "" {
		logFile = config.DefaultLogFile(time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	cleanup, err := log.InitWithTeaLog(logFile, "scli")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logCleanup = cleanup

	level := log.ParseLevel(cfg.Log.Level)
	if debug || envDebug {
		level = log.LevelDebug
	}
	log.SetMinLevel(level)
	log.Info(log.CatConfig, "scli starting", "version", version, "config", viper.ConfigFileUsed(),
		"scripts_dir", cfg.ScriptsDir)
	return nil
}

// newApp discovers scripts and prints load problems as warnings.
func newApp(cmd *cobra.Command) (*app.App, error) {
	tcfg := cfg.Tracing
	if tcfg.Exporter == "file" && tcfg.FilePath == "" {
		tcfg.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tcfg, version)
	if err != nil {
		log.ErrorErr(log.CatTrace, "tracing disabled", err)
		provider = tracing.Disabled()
	}

	a, err := app.New(app.Options{
		Config:     cfg,
		ConfigFile: viper.ConfigFileUsed(),
		Builtins:   builtins,
		Tracing:    provider,
		Stdin:      cmd.InOrStdin(),
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
		Announce:   true,
	})
	if err != nil {
		_ = provider.Shutdown(context.Background())
		printError(cmd, err.Error())
		return nil, errReported
	}

	if cfg.UI.ShowProblems {
		_ = presentation.NewFormatter(cmd.ErrOrStderr()).FormatProblems(a.Discovery().Problems)
	}
	return a, nil
}

// runScript runs name, or shows the menu when name is empty, and reports the
// outcome the way every entry point does.
func runScript(cmd *cobra.Command, name string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if name != "" {
		err = a.Run(ctx, name)
	} else {
		name, err = a.RunInteractive(ctx)
	}
	return report(cmd, name, err)
}

func report(cmd *cobra.Command, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dispatch.ErrCancelled) && name == "":
		// Only backing out of the menu is a clean exit. A script that
		// returns a cancel has still failed.
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), styles.WarningStyle.Render("Cancelled"))
		return nil
	case dispatch.IsSelectionError(err), name == "":
		printError(cmd, err.Error())
	default:
		printError(cmd, "Failed to execute script: "+name)
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	}
	return errReported
}

func printError(cmd *cobra.Command, msg string) {
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), styles.ErrorStyle.Render(msg))
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	if err != nil && !errors.Is(err, errReported) {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), styles.ErrorStyle.Render("Error: "+err.Error()))
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
