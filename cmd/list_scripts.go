package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/scli/internal/presentation"
)

var listJSON bool

var listScriptsCmd = &cobra.Command{
	Use:     "list-scripts",
	Aliases: []string{"list", "ls"},
	Short:   "List all available scripts",
	Long: `List every script found in the scripts directory with its description.

Manifests that failed to load are reported as warnings on stderr.

Examples:
  scli list-scripts
  scli ls --json | jq '.scripts[].name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(cmd.Context()) }()

		d := a.Discovery()
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if listJSON {
			return formatter.FormatScriptsJSON(d.Catalog.Entries(), d.Problems)
		}
		return formatter.FormatScriptsTable(d.Catalog.Entries())
	},
}

func init() {
	listScriptsCmd.Flags().BoolVar(&listJSON, "json", false, "Print scripts and load problems as JSON")
	rootCmd.AddCommand(listScriptsCmd)
}
