package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setBaseEnv sets a complete kanbanize configuration and returns options that
// point at a dotenv file that does not exist.
func setBaseEnv(t *testing.T) Options {
	t.Helper()

	t.Setenv("GITHUB_PERSONAL_TOKEN", "test-token")
	t.Setenv("GITHUB_TRACK_USER", "trackuser")
	t.Setenv("GITHUB_OWNER_FILTER", "acme")
	t.Setenv("GITHUB_DOMAIN", "")
	t.Setenv("KANBANIZE_BASE_PATH", "https://acme.kanbanize.com/api/v2")
	t.Setenv("KANBANIZE_API_KEY", "api-key")
	t.Setenv("TICKET_PROVIDER", "")
	t.Setenv("JIRA_URL", "")
	t.Setenv("JIRA_USERNAME", "")
	t.Setenv("JIRA_TOKEN", "")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	return Options{DotEnv: filepath.Join(t.TempDir(), "missing.env")}
}

func TestLoadConfigDefaults(t *testing.T) {
	opts := setBaseEnv(t)

	config, err := LoadConfig(opts)
	require.NoError(t, err)

	assert.Equal(t, "test-token", config.GitHub.Token)
	assert.Equal(t, "github.com", config.GitHub.Domain)
	assert.Equal(t, "trackuser", config.GitHub.TrackUser)
	assert.Equal(t, "acme", config.GitHub.OwnerFilter)
	assert.Equal(t, "https://acme.kanbanize.com/api/v2", config.Kanbanize.BaseURL)
	assert.Equal(t, "api-key", config.Kanbanize.APIKey)
	assert.Equal(t, ProviderKanbanize, config.TicketProvider)
	assert.Equal(t, DefaultInterval, config.Interval)
	assert.Equal(t, DefaultRequestTimeout, config.RequestTimeout)
	assert.Equal(t, "info", config.LogLevel)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantVar string
	}{
		{name: "Missing token", unset: "GITHUB_PERSONAL_TOKEN", wantVar: "GITHUB_PERSONAL_TOKEN"},
		{name: "Missing track user", unset: "GITHUB_TRACK_USER", wantVar: "GITHUB_TRACK_USER"},
		{name: "Missing owner filter", unset: "GITHUB_OWNER_FILTER", wantVar: "GITHUB_OWNER_FILTER"},
		{name: "Missing kanbanize base path", unset: "KANBANIZE_BASE_PATH", wantVar: "KANBANIZE_BASE_PATH"},
		{name: "Missing kanbanize api key", unset: "KANBANIZE_API_KEY", wantVar: "KANBANIZE_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := setBaseEnv(t)
			t.Setenv(tt.unset, "")

			config, err := LoadConfig(opts)
			require.Error(t, err)
			assert.Nil(t, config)
			assert.Contains(t, err.Error(), tt.wantVar)
		})
	}
}

func TestLoadConfigJiraProvider(t *testing.T) {
	opts := setBaseEnv(t)
	t.Setenv("TICKET_PROVIDER", "JIRA")
	t.Setenv("KANBANIZE_BASE_PATH", "")
	t.Setenv("KANBANIZE_API_KEY", "")

	_, err := LoadConfig(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_URL")
	assert.Contains(t, err.Error(), "JIRA_TOKEN")
	assert.NotContains(t, err.Error(), "KANBANIZE")

	t.Setenv("JIRA_URL", "https://jira.example.com")
	t.Setenv("JIRA_TOKEN", "jira-token")

	config, err := LoadConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, ProviderJira, config.TicketProvider)
	assert.Equal(t, "https://jira.example.com", config.Jira.BaseURL)
}

func TestLoadConfigUnknownProvider(t *testing.T) {
	opts := setBaseEnv(t)
	t.Setenv("TICKET_PROVIDER", "trello")

	_, err := LoadConfig(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown TICKET_PROVIDER")
}

func TestLoadConfigDurations(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		timeout  string
		want     time.Duration
		wantErr  bool
	}{
		{name: "Custom interval", interval: "1m", timeout: "5s", want: time.Minute},
		{name: "Invalid interval", interval: "soon", timeout: "5s", wantErr: true},
		{name: "Invalid timeout", interval: "1m", timeout: "later", wantErr: true},
		{name: "Non-positive interval", interval: "0s", timeout: "5s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := setBaseEnv(t)
			t.Setenv("POLL_INTERVAL", tt.interval)
			t.Setenv("REQUEST_TIMEOUT", tt.timeout)

			config, err := LoadConfig(opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, config.Interval)
		})
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	opts := setBaseEnv(t)
	require.NoError(t, os.Unsetenv("GITHUB_TRACK_USER"))

	dotEnv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotEnv, []byte("GITHUB_TRACK_USER=from-dotenv\n"), 0o600))
	opts.DotEnv = dotEnv
	t.Cleanup(func() { os.Unsetenv("GITHUB_TRACK_USER") })

	config, err := LoadConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", config.GitHub.TrackUser)
}

func TestLoadConfigFile(t *testing.T) {
	opts := setBaseEnv(t)
	t.Setenv("GITHUB_OWNER_FILTER", "")

	file := filepath.Join(t.TempDir(), "prfill.yaml")
	content := "github:\n  owner_filter: from-file\nmetrics:\n  addr: \":2112\"\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	opts.File = file

	config, err := LoadConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, ":2112", config.MetricsAddr)

	// Empty environment variables count as unset, so the file value is used.
	assert.Equal(t, "from-file", config.GitHub.OwnerFilter)
}

func TestValidateJiraConfig(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		token   string
		wantErr bool
	}{
		{name: "All fields present", baseURL: "https://jira.example.com", token: "test-token"},
		{name: "Missing base URL", token: "test-token", wantErr: true},
		{name: "Missing token", baseURL: "https://jira.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Jira: JiraConfig{
					BaseURL: tt.baseURL,
					Token:   tt.token,
				},
			}

			err := ValidateJiraConfig(config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
