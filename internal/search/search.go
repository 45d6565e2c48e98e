// Package search talks to the CDN's search API, which indexes the uploaded
// assets. Listings use it to turn a free-text expression into the set of
// public ids whose rows should be returned.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Searcher resolves a search expression to matching asset public ids.
type Searcher interface {
	PublicIDs(ctx context.Context, expression string) ([]string, error)
}

// Client is the HTTP implementation against the CDN admin API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Resources []struct {
		PublicID string `json:"public_id"`
	} `json:"resources"`
}

func (c *Client) PublicIDs(ctx context.Context, expression string) ([]string, error) {
	u := fmt.Sprintf("%s/resources/search?expression=%s", c.baseURL, url.QueryEscape(expression))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search response decode failed: %w", err)
	}

	ids := make([]string, 0, len(body.Resources))
	for _, r := range body.Resources {
		ids = append(ids, r.PublicID)
	}
	return ids, nil
}
