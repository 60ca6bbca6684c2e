// Package issues creates GitHub issues through the REST API.
package issues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mvoronin/speech-apps/logger"
)

const defaultAPIURL = "https://api.github.com"

// Client posts issues to a single configured repository.
type Client struct {
	Token      string
	Repo       string
	APIURL     string
	HTTPClient *http.Client
}

// Issue is the subset of the GitHub issue payload the apps care about.
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
}

// NewClient builds a Client. Token and repo may be empty; Create reports
// the missing credential when it is actually needed.
func NewClient(token, repo, apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		Token:      token,
		Repo:       repo,
		APIURL:     apiURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type createRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// Create opens a new issue in the configured repository.
func (c *Client) Create(ctx context.Context, title, body string, labels []string) (*Issue, error) {
	if c.Token == "" {
		return nil, fmt.Errorf("environment variable GITHUB_TOKEN is required")
	}
	if c.Repo == "" {
		return nil, fmt.Errorf("environment variable GITHUB_REPO is required")
	}

	payload, err := json.Marshal(createRequest{Title: title, Body: body, Labels: labels})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/issues", c.APIURL, c.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "steam-llm-agent")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach GitHub API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GitHub response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, string(data))
	}

	var issue Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		return nil, fmt.Errorf("parsing GitHub response: %w", err)
	}
	logger.Logf("Issue created: %s", issue.HTMLURL)
	return &issue, nil
}
