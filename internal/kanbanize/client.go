// Package kanbanize provides functionality for reading cards from the Kanbanize API.
package kanbanize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/danielolaszy/prfill/internal/logging"
	"github.com/danielolaszy/prfill/pkg/models"
)

// Client handles interactions with the Kanbanize API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// card is the subset of the Kanbanize card schema the service reads.
type card struct {
	Description string `json:"description"`
}

type getCardResponse struct {
	Data *card `json:"data"`
}

// NewClient creates a new Kanbanize client for the API rooted at baseURL
// (e.g. https://acme.kanbanize.com/api/v2).
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("kanbanize base url not found in configuration")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("kanbanize api key not found in configuration")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	logging.Info("kanbanize configuration",
		"base_url", c.baseURL,
		"api_key", logging.MaskSensitive(apiKey))

	return c, nil
}

// GetTicket retrieves the card with the given id. A missing card or an
// unreachable service is an error; there is no partial result.
func (c *Client) GetTicket(ctx context.Context, id int) (models.Ticket, error) {
	endpoint := fmt.Sprintf("%s/cards/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to build card request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	logging.Debug("retrieving kanbanize card", "card_id", id)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return models.Ticket{}, fmt.Errorf("error in response: status code %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var payload getCardResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Ticket{}, fmt.Errorf("failed to decode card %d: %w", id, err)
	}
	if payload.Data == nil {
		return models.Ticket{}, fmt.Errorf("card %d: response has no data", id)
	}

	logging.Debug("successfully retrieved kanbanize card",
		"card_id", id,
		"description_length", len(payload.Data.Description))

	return models.Ticket{
		ID:          id,
		Description: payload.Data.Description,
	}, nil
}
