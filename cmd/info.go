package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/presentation"
	"github.com/zjrosen/scli/internal/ui/markdown"
)

var infoCmd = &cobra.Command{
	Use:   "info [script_name]",
	Short: "Show tool information, or details about one script",
	Long: `Without an argument, print the tool version, the scripts directory, the
config and log files in use and the available commands.

With a script name, print the script's manifest details, its merged
configuration (secrets masked) and its help text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		defer func() { _ = a.Close(ctx) }()

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if len(args) == 0 {
			return formatter.FormatToolInfo(presentation.ToolInfo{
				Name:        "scli",
				Version:     version,
				ScriptsDir:  cfg.ScriptsDir,
				ScriptCount: a.Discovery().Catalog.Len(),
				ConfigFile:  viper.ConfigFileUsed(),
				LogFile:     logFile,
			})
		}

		entry, err := a.Dispatcher().Resolve(args[0])
		if err != nil {
			return report(cmd, args[0], err)
		}
		values, err := a.ScriptConfig(ctx, entry)
		if err != nil {
			printError(cmd, err.Error())
			return errReported
		}

		renderer, err := markdown.New(presentation.DefaultWidth, cfg.UI.MarkdownStyle)
		if err != nil {
			// Help is still shown, unrendered.
			log.ErrorErr(log.CatConfig, "markdown renderer unavailable", err)
		}
		return formatter.FormatScriptInfo(entry, values, renderer)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
