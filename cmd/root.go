// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repo-insights",
	Short: "A CLI tool to analyze the commit history of a GitHub repository.",
	Long: `repo-insights retrieves up to the 1000 most recent commits of a GitHub
repository branch and derives activity statistics from them: commits per day,
hour and weekday, a monthly trend, a contributor ranking, commit message
lengths and a calendar heatmap.

The access token is kept in the OS keychain (see "repo-insights token save").
The GITHUB_TOKEN environment variable takes precedence when set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %s", domain.UserMessage(err)))
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./config.yaml or ~/.repo-insights/config.yaml)")
}
