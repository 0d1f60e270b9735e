// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v41/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/prfill/internal/config"
	"github.com/danielolaszy/prfill/internal/logging"
	"github.com/danielolaszy/prfill/pkg/models"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client    *github.Client
	trackUser string
}

// pullRequestUpdate is the PATCH payload for a pull request body.
type pullRequestUpdate struct {
	Body string `json:"body"`
}

// apiURLForDomain returns the REST API root for a GitHub domain.
// An empty domain means github.com.
func apiURLForDomain(domain string) string {
	if domain == "" || domain == "github.com" {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// NewClient creates a new GitHub API client for the configured domain. Requests
// go through an oauth2 token transport, the secondary rate limit middleware and
// an ETag cache that revalidates on every request, in that order.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}
	if cfg.TrackUser == "" {
		return nil, fmt.Errorf("github track user not found in configuration")
	}

	apiURL := apiURLForDomain(cfg.Domain)

	logging.Info("github configuration",
		"domain", cfg.Domain,
		"api_url", apiURL,
		"track_user", cfg.TrackUser,
		"token", logging.MaskSensitive(cfg.Token))

	return NewClientWithHTTPClient(newHTTPClient(cfg.Token, nil), apiURL, cfg.TrackUser)
}

// newHTTPClient builds the authenticated transport stack on top of base. A nil
// base means http.DefaultTransport.
func newHTTPClient(token string, base http.RoundTripper) *http.Client {
	cache := httpcache.NewMemoryCacheTransport()
	cache.Transport = base

	rateLimited := github_ratelimit.NewClient(&revalidatingTransport{base: cache})
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   rateLimited.Transport,
		},
	}
}

// revalidatingTransport marks every request max-age=0 so the cache always asks
// GitHub with If-None-Match instead of serving a response it still considers
// fresh. A 304 costs no rate limit, and a pass never sees data from an earlier one.
type revalidatingTransport struct {
	base http.RoundTripper
}

func (t *revalidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Cache-Control", "max-age=0")
	return t.base.RoundTrip(req)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and API
// root. Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, trackUser string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url: %w", err)
	}

	client := github.NewClient(httpClient)
	client.BaseURL = parsedURL
	client.UploadURL = parsedURL

	return &Client{client: client, trackUser: trackUser}, nil
}

// AuthenticatedUser returns the login the token belongs to. It is used to
// verify the token before the service starts polling.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		logging.Error("failed to test github token",
			"error", err,
			"status_code", statusCode(resp))
		return "", fmt.Errorf("error testing github token: %w", err)
	}
	return user.GetLogin(), nil
}

// ListOpenPullRequests searches for the open pull requests authored by the
// tracked user, newest first. Every search result is returned as a candidate;
// items without a pull request link are kept so the caller decides what to skip.
func (c *Client) ListOpenPullRequests(ctx context.Context) ([]models.CandidateIssue, error) {
	query := fmt.Sprintf("is:open is:pr author:%s", c.trackUser)
	opts := &github.SearchOptions{
		Sort:  "created",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var result []models.CandidateIssue
	for {
		found, resp, err := c.client.Search.Issues(ctx, query, opts)
		if err != nil {
			logging.Error("failed to search github pull requests",
				"query", query,
				"status_code", statusCode(resp),
				"error", err)
			return nil, fmt.Errorf("failed to search pull requests for %s (page %d): %w", c.trackUser, opts.Page, err)
		}

		logRateLimit(resp, "search/issues", opts.Page, len(found.Issues))

		for _, issue := range found.Issues {
			result = append(result, models.CandidateIssue{
				Reference:            issue.GetURL(),
				Body:                 issue.GetBody(),
				PullRequestReference: issue.GetPullRequestLinks().GetURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// GetPullRequest fetches the pull request behind an issue's pull request link.
// Visibility and owner are taken from the base repository, the one the pull
// request is opened against.
func (c *Client) GetPullRequest(ctx context.Context, reference string) (models.PullRequestDetail, error) {
	if err := c.checkReference(reference); err != nil {
		return models.PullRequestDetail{}, err
	}

	req, err := c.client.NewRequest(http.MethodGet, reference, nil)
	if err != nil {
		return models.PullRequestDetail{}, fmt.Errorf("failed to build pull request request: %w", err)
	}

	pull := new(github.PullRequest)
	resp, err := c.client.Do(ctx, req, pull)
	if err != nil {
		logging.Debug("failed to get pull request",
			"pull_request", reference,
			"status_code", statusCode(resp),
			"error", err)
		return models.PullRequestDetail{}, fmt.Errorf("failed to get pull request %s: %w", reference, err)
	}

	return mapPullRequest(pull, reference), nil
}

// UpdatePullRequestBody replaces the body of the pull request at reference.
func (c *Client) UpdatePullRequestBody(ctx context.Context, reference, body string) (models.PullRequestDetail, error) {
	if err := c.checkReference(reference); err != nil {
		return models.PullRequestDetail{}, err
	}

	logging.Debug("updating pull request body", "pull_request", reference, "body_length", len(body))

	req, err := c.client.NewRequest(http.MethodPatch, reference, &pullRequestUpdate{Body: body})
	if err != nil {
		return models.PullRequestDetail{}, fmt.Errorf("failed to build pull request update: %w", err)
	}

	pull := new(github.PullRequest)
	resp, err := c.client.Do(ctx, req, pull)
	if err != nil {
		logging.Debug("failed to update pull request",
			"pull_request", reference,
			"status_code", statusCode(resp),
			"error", err)
		return models.PullRequestDetail{}, fmt.Errorf("failed to update pull request %s: %w", reference, err)
	}

	return mapPullRequest(pull, reference), nil
}

// checkReference rejects references outside the configured API root so the
// token is only ever sent to the GitHub instance it belongs to.
func (c *Client) checkReference(reference string) error {
	if reference == "" {
		return fmt.Errorf("empty pull request reference")
	}
	if !strings.HasPrefix(reference, c.client.BaseURL.String()) {
		return fmt.Errorf("pull request reference %s is outside %s", reference, c.client.BaseURL)
	}
	return nil
}

func mapPullRequest(pull *github.PullRequest, reference string) models.PullRequestDetail {
	ref := pull.GetURL()
	if ref == "" {
		ref = reference
	}
	repo := pull.GetBase().GetRepo()
	return models.PullRequestDetail{
		Reference:       ref,
		IsPrivate:       repo.GetPrivate(),
		RepositoryOwner: repo.GetOwner().GetLogin(),
		HeadBranchName:  pull.GetHead().GetRef(),
	}
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

func logRateLimit(resp *github.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	logging.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 5 {
		logging.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second))
	}
}
