package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion",
	Short: "Set up shell tab completion",
	Long: `Generate a tab completion script for PowerShell.

To load it in the current session:
  sm completion | Out-String | Invoke-Expression

To load it for every session, add that line to your PowerShell profile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
	},
}
