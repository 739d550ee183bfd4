package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/templates"
	"github.com/zjrosen/scli/internal/ui/styles"
)

var initSet []string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file and the sample scripts",
	Long: `Write the default config file and copy the sample script manifests into
the scripts directory. Existing files are never overwritten.

Examples:
  scli init
  scli init --set log.enabled=true --set scripts.hello_world.name=Gopher`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath
		}

		if _, err := os.Stat(path); err == nil {
			_, _ = fmt.Fprintf(out, "Config exists: %s\n", path)
		} else {
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, styles.SuccessStyle.Render("Created config: "+path))
		}

		for _, kv := range initSet {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q: want key=value", kv)
			}
			if err := config.SaveValue(path, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Set %s = %s\n", key, value)
		}

		res, err := templates.WriteScripts(cfg.ScriptsDir)
		if err != nil {
			return err
		}
		for _, p := range res.Written {
			_, _ = fmt.Fprintln(out, styles.SuccessStyle.Render("Created script: "+p))
		}
		for _, p := range res.Skipped {
			_, _ = fmt.Fprintf(out, "Script exists: %s\n", p)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringArrayVar(&initSet, "set", nil, "Set a config value (key=value, dot notation); repeatable")
	rootCmd.AddCommand(initCmd)
}
