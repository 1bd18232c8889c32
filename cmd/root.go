// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pr-snapshot",
	Short: "A CLI tool that produces a daily pull-request activity snapshot.",
	Long: `pr-snapshot aggregates pull-request activity across every repository
visible to the authenticated user into a single daily snapshot: volume,
review-health signals, and per-contributor rollups. The rendered report can
be printed or posted to a Google Chat webhook.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
