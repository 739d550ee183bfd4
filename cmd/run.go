package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [script_name]",
	Short: "Run a script by name, or pick one from the menu",
	Long: `Run a script by name. Without a name the interactive menu is shown.

Examples:
  scli run hello_world
  scli run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return runScript(cmd, name)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
