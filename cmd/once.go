package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// onceCmd performs a single pass, for cron jobs and manual runs.
var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Fill pull request descriptions once and exit",
	Long: `Once performs a single pass over the tracked user's open pull requests and
prints a summary. It exits non-zero only when the pull requests cannot be listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		engine, _, err := newEngine(cmd, cfg)
		if err != nil {
			return err
		}

		summary, err := engine.ReconcileOnce(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "listed %d, updated %d, skipped %d, failed %d\n",
			summary.Listed, summary.Updated, summary.Skipped, summary.Failed)
		return nil
	},
}
