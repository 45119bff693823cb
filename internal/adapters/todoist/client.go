package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tododash/core/internal/domain/entities"
	"github.com/tododash/core/internal/infrastructure/config"
	"github.com/tododash/core/internal/infrastructure/logger"
)

// Client fetches one full sync payload from the Todoist sync API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	token      string
	resources  string
	logger     *logger.Logger
}

// NewClient creates a new sync API client
func NewClient(cfg config.TodoistConfig, appLogger *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.APIBase, "/"),
		version:    cfg.APIVersion,
		token:      cfg.AccessToken,
		resources:  cfg.ResourceTypes,
		logger:     appLogger.WithComponent("todoist"),
	}
}

// Fetch performs one sync request with a fresh sync token, returning the
// complete set of items, projects, labels and collaborators.
func (c *Client) Fetch(ctx context.Context) (*entities.SyncPayload, error) {
	form := url.Values{}
	form.Set("sync_token", "*")
	form.Set("resource_types", c.resources)

	endpoint := fmt.Sprintf("%s/%s/sync", c.baseURL, c.version)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnw("Sync API returned non-OK status", "status", resp.StatusCode)
		return nil, fmt.Errorf("sync request failed with status %d", resp.StatusCode)
	}

	var payload entities.SyncPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode sync response: %w", err)
	}

	c.logger.Debugw("Sync payload fetched",
		"items", len(payload.Items),
		"projects", len(payload.Projects),
		"labels", len(payload.Labels),
		"collaborators", len(payload.Collaborators),
	)

	return &payload, nil
}
