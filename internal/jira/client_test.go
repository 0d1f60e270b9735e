package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/prfill/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientWithHTTPClient(server.Client(), server.URL)
	require.NoError(t, err)
	return client
}

func TestNewClientCredentialValidation(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       config.JiraConfig
		wantError bool
	}{
		{name: "Missing URL", cfg: config.JiraConfig{Token: "test-token"}, wantError: true},
		{name: "Missing token", cfg: config.JiraConfig{BaseURL: "https://jira.example.com"}, wantError: true},
		{name: "Personal access token", cfg: config.JiraConfig{BaseURL: "https://jira.example.com", Token: "test-token"}},
		{name: "Basic auth", cfg: config.JiraConfig{BaseURL: "https://example.atlassian.net", Username: "test@example.com", Token: "test-token"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.cfg)
			if tc.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client.client)
		})
	}
}

func TestGetTicketRenderedDescription(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/10042", r.URL.Path)
		assert.Equal(t, "renderedFields", r.URL.Query().Get("expand"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "10042",
			"key": "PROJ-42",
			"fields": {"description": "h1. Title"},
			"renderedFields": {"description": "<h1>Title</h1>"}
		}`)
	}))

	ticket, err := client.GetTicket(context.Background(), 10042)
	require.NoError(t, err)
	assert.Equal(t, 10042, ticket.ID)
	assert.Equal(t, "<h1>Title</h1>", ticket.Description)
}

func TestGetTicketFallsBackToRawDescription(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "7", "key": "PROJ-7", "fields": {"description": "plain text"}}`)
	}))

	ticket, err := client.GetTicket(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "plain text", ticket.Description)
}

func TestGetTicketNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errorMessages": ["Issue does not exist"]}`)
	}))

	_, err := client.GetTicket(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 404")
}

func TestGetTicketUninitialized(t *testing.T) {
	_, err := (&Client{}).GetTicket(context.Background(), 1)
	assert.ErrorContains(t, err, "not initialized")
}
