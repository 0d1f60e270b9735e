package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/prfill/internal/github"
	"github.com/danielolaszy/prfill/internal/logging"
)

// checkCmd validates the configuration and the GitHub token.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration and GitHub credentials",
	Long: `Check loads the configuration, reports missing variables and verifies that
the GitHub token is accepted. Nothing is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		githubClient, err := github.NewClient(cfg.GitHub)
		if err != nil {
			return fmt.Errorf("failed to initialize github client: %w", err)
		}

		if _, err := newTicketSource(cfg); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()

		login, err := githubClient.AuthenticatedUser(ctx)
		if err != nil {
			return err
		}

		logging.Info("configuration ok",
			"github_user", login,
			"track_user", cfg.GitHub.TrackUser,
			"owner_filter", cfg.GitHub.OwnerFilter,
			"ticket_provider", cfg.TicketProvider)

		fmt.Fprintf(cmd.OutOrStdout(), "authenticated as %s, tracking %s in %s via %s\n",
			login, cfg.GitHub.TrackUser, cfg.GitHub.OwnerFilter, cfg.TicketProvider)
		return nil
	},
}
