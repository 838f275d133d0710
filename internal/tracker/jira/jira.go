package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alanmeadows/mrsweep/internal/provider"
)

// DefaultBaseURL is the Jira REST API root.
const DefaultBaseURL = "https://myorg.atlassian.net/rest/api/latest"

// Client reads issues from Jira using HTTP Basic authentication.
type Client struct {
	authHeader string
	httpClient *http.Client
	baseURL    string // override for testing
}

// NewClient creates a Jira client for the given username and API token.
func NewClient(username, apiToken string) *Client {
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + apiToken))
	return &Client{
		authHeader: "Basic " + encoded,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// GetIssue fetches the issue with the given key. Missing status or creator
// attributes are reported as Unknown. A non-200 response yields an
// *provider.APIError; callers decide what to substitute.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	if key == "" {
		return nil, fmt.Errorf("issue key is required")
	}

	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/issue/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.ParseError("Jira", resp)
	}

	var raw jiraIssue
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode issue response: %w", err)
	}

	issue := mapIssue(key, raw)
	slog.Debug("fetched jira issue", "key", key, "status", issue.Status)
	return issue, nil
}

func mapIssue(key string, raw jiraIssue) *Issue {
	issue := UnknownIssue(key)
	if raw.Fields == nil {
		return issue
	}
	if s := raw.Fields.Status; s != nil && s.Name != nil {
		issue.Status = *s.Name
	}
	if u := raw.Fields.Creator; u != nil {
		if u.DisplayName != nil {
			issue.CreatorDisplayName = *u.DisplayName
		}
		if u.AccountID != nil {
			issue.CreatorAccountID = *u.AccountID
		}
	}
	return issue
}
