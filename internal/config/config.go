// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ProviderKanbanize selects the Kanbanize ticket service.
	ProviderKanbanize = "kanbanize"
	// ProviderJira selects the JIRA ticket service.
	ProviderJira = "jira"

	// DefaultInterval is the time between two reconciliation passes.
	DefaultInterval = 5 * time.Minute
	// DefaultRequestTimeout bounds every outbound API call.
	DefaultRequestTimeout = 30 * time.Second
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub         GitHubConfig
	Kanbanize      KanbanizeConfig
	Jira           JiraConfig
	TicketProvider string
	Interval       time.Duration
	RequestTimeout time.Duration
	MetricsAddr    string
	LogLevel       string
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token       string
	Domain      string
	TrackUser   string
	OwnerFilter string
}

// KanbanizeConfig holds Kanbanize specific configuration.
type KanbanizeConfig struct {
	BaseURL string
	APIKey  string
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	BaseURL  string
	Username string
	Token    string
}

// Options controls where LoadConfig looks for values besides the environment.
type Options struct {
	// File is an optional config file (yaml, json or toml).
	File string
	// DotEnv is the dotenv file loaded before reading the environment.
	// A missing file is not an error.
	DotEnv string
}

// LoadConfig initializes and loads configuration from a dotenv file, an
// optional config file and environment variables, in increasing precedence.
func LoadConfig(opts Options) (*Config, error) {
	dotEnv := opts.DotEnv
	if dotEnv == "" {
		dotEnv = ".env"
	}
	if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnv, err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("github.domain", "github.com")
	v.SetDefault("ticket.provider", ProviderKanbanize)
	v.SetDefault("poll.interval", DefaultInterval.String())
	v.SetDefault("request.timeout", DefaultRequestTimeout.String())
	v.SetDefault("log.level", "info")

	// Map specific environment variables
	v.BindEnv("github.token", "GITHUB_PERSONAL_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("github.track_user", "GITHUB_TRACK_USER")
	v.BindEnv("github.owner_filter", "GITHUB_OWNER_FILTER")
	v.BindEnv("kanbanize.base_path", "KANBANIZE_BASE_PATH")
	v.BindEnv("kanbanize.api_key", "KANBANIZE_API_KEY")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("ticket.provider", "TICKET_PROVIDER")
	v.BindEnv("poll.interval", "POLL_INTERVAL")
	v.BindEnv("request.timeout", "REQUEST_TIMEOUT")
	v.BindEnv("metrics.addr", "METRICS_ADDR")
	v.BindEnv("log.level", "LOG_LEVEL")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.File, err)
		}
	}

	interval, err := time.ParseDuration(v.GetString("poll.interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	timeout, err := time.ParseDuration(v.GetString("request.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	config := &Config{
		GitHub: GitHubConfig{
			Token:       v.GetString("github.token"),
			Domain:      v.GetString("github.domain"),
			TrackUser:   v.GetString("github.track_user"),
			OwnerFilter: v.GetString("github.owner_filter"),
		},
		Kanbanize: KanbanizeConfig{
			BaseURL: v.GetString("kanbanize.base_path"),
			APIKey:  v.GetString("kanbanize.api_key"),
		},
		Jira: JiraConfig{
			BaseURL:  v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
		},
		TicketProvider: strings.ToLower(v.GetString("ticket.provider")),
		Interval:       interval,
		RequestTimeout: timeout,
		MetricsAddr:    v.GetString("metrics.addr"),
		LogLevel:       strings.ToLower(v.GetString("log.level")),
	}
	if config.GitHub.Domain == "" {
		config.GitHub.Domain = "github.com"
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_PERSONAL_TOKEN")
	}
	if config.GitHub.TrackUser == "" {
		missingVars = append(missingVars, "GITHUB_TRACK_USER")
	}
	if config.GitHub.OwnerFilter == "" {
		missingVars = append(missingVars, "GITHUB_OWNER_FILTER")
	}

	switch config.TicketProvider {
	case ProviderKanbanize:
		missingVars = append(missingVars, missingKanbanizeVars(config)...)
	case ProviderJira:
		missingVars = append(missingVars, missingJiraVars(config)...)
	default:
		return fmt.Errorf("unknown TICKET_PROVIDER %q, expected %q or %q",
			config.TicketProvider, ProviderKanbanize, ProviderJira)
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if config.Interval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", config.Interval)
	}
	if config.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", config.RequestTimeout)
	}

	return nil
}

func missingKanbanizeVars(config *Config) []string {
	var missingVars []string
	if config.Kanbanize.BaseURL == "" {
		missingVars = append(missingVars, "KANBANIZE_BASE_PATH")
	}
	if config.Kanbanize.APIKey == "" {
		missingVars = append(missingVars, "KANBANIZE_API_KEY")
	}
	return missingVars
}

func missingJiraVars(config *Config) []string {
	var missingVars []string
	if config.Jira.BaseURL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}
	return missingVars
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	if missingVars := missingJiraVars(config); len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}
	return nil
}
