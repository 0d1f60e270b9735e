// Package cmd provides the command-line interface for prfill.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prfill",
	Short: "prfill fills empty pull request descriptions from tickets",
	Long: `prfill watches the open pull requests of a GitHub user and fills the
description of every pull request that was opened without one.

The ticket is taken from the branch name: the first number in the branch
(e.g. 'feature/123-login' or 'release/42.7') is looked up in Kanbanize or JIRA,
its description is converted to Markdown and written to the pull request.

Only pull requests in private repositories owned by GITHUB_OWNER_FILTER are
touched, and a description that is already set is never overwritten.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().String("config", "", "Optional config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().Duration("interval", 0, "Time between passes (overrides POLL_INTERVAL)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Deadline for each API call (overrides REQUEST_TIMEOUT)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Log the descriptions that would be written without updating pull requests")

	// Without a subcommand the service runs, as it does in a container.
	rootCmd.RunE = runCmd.RunE

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(checkCmd)
}
