// Package jira provides a ticket source backed by the JIRA REST API.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/prfill/internal/config"
	"github.com/danielolaszy/prfill/internal/logging"
	"github.com/danielolaszy/prfill/pkg/models"
)

// Client handles interactions with the JIRA API
type Client struct {
	client *jira.Client
}

// NewClient creates a new JIRA client. Basic authentication is used when a
// username is configured, a personal access token otherwise.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, fmt.Errorf("JIRA_URL and JIRA_TOKEN must be set")
	}

	var httpClient *http.Client
	if cfg.Username != "" {
		tp := jira.BasicAuthTransport{
			Username: cfg.Username,
			Password: cfg.Token,
		}
		httpClient = tp.Client()
	} else {
		tp := jira.PATAuthTransport{
			Token: cfg.Token,
		}
		httpClient = tp.Client()
	}

	logging.Info("jira configuration",
		"url", cfg.BaseURL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token))

	return NewClientWithHTTPClient(httpClient, cfg.BaseURL)
}

// NewClientWithHTTPClient creates a Client that sends requests through httpClient.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client, err := jira.NewClient(httpClient, baseURL)
	if err != nil {
		return nil, fmt.Errorf("error creating JIRA client: %w", err)
	}
	return &Client{client: client}, nil
}

// GetTicket retrieves the issue with the given numeric id. The rendered
// (HTML) description is preferred; the raw wiki markup is used when the
// server does not render fields.
func (c *Client) GetTicket(ctx context.Context, id int) (models.Ticket, error) {
	if c.client == nil {
		return models.Ticket{}, fmt.Errorf("JIRA client not initialized")
	}

	logging.Debug("retrieving jira issue", "issue_id", id)

	issue, resp, err := c.client.Issue.GetWithContext(ctx, strconv.Itoa(id), &jira.GetQueryOptions{
		Fields: "description",
		Expand: "renderedFields",
	})
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return models.Ticket{}, fmt.Errorf("failed to get JIRA issue %d: %w (status: %d)", id, err, status)
	}

	description := ""
	if issue.RenderedFields != nil {
		description = issue.RenderedFields.Description
	}
	if description == "" && issue.Fields != nil {
		description = issue.Fields.Description
	}

	logging.Debug("successfully retrieved jira issue",
		"issue_id", id,
		"key", issue.Key,
		"description_length", len(description))

	return models.Ticket{ID: id, Description: description}, nil
}
