package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/prfill/internal/config"
	"github.com/danielolaszy/prfill/internal/github"
	"github.com/danielolaszy/prfill/internal/jira"
	"github.com/danielolaszy/prfill/internal/kanbanize"
	"github.com/danielolaszy/prfill/internal/logging"
	"github.com/danielolaszy/prfill/internal/reconcile"
)

// loadConfig reads the configuration and applies the persistent flags on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(config.Options{File: file})
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		cfg.Interval = interval
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.RequestTimeout = timeout
	}

	logging.SetLevel(logging.LogLevel(cfg.LogLevel))

	return cfg, nil
}

// newTicketSource builds the client for the configured ticket provider.
func newTicketSource(cfg *config.Config) (reconcile.TicketSource, error) {
	switch cfg.TicketProvider {
	case config.ProviderJira:
		if err := config.ValidateJiraConfig(cfg); err != nil {
			return nil, err
		}
		client, err := jira.NewClient(cfg.Jira)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize jira client: %w", err)
		}
		return client, nil
	case config.ProviderKanbanize:
		client, err := kanbanize.NewClient(cfg.Kanbanize.BaseURL, cfg.Kanbanize.APIKey,
			kanbanize.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize kanbanize client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown ticket provider %q", cfg.TicketProvider)
	}
}

// newEngine wires the GitHub client, the ticket source and the engine options.
func newEngine(cmd *cobra.Command, cfg *config.Config) (*reconcile.Engine, *github.Client, error) {
	githubClient, err := github.NewClient(cfg.GitHub)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize github client: %w", err)
	}

	tickets, err := newTicketSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, nil, err
	}

	engine := reconcile.New(githubClient, tickets, cfg.GitHub.OwnerFilter,
		reconcile.WithInterval(cfg.Interval),
		reconcile.WithCallTimeout(cfg.RequestTimeout),
		reconcile.WithDryRun(dryRun),
	)

	return engine, githubClient, nil
}
