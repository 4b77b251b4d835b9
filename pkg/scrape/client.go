// Package scrape is the client for the external scraping service. The
// service renders a page and returns markdown and/or HTML plus whatever
// metadata it recovered; everything past the HTTP envelope is a black box.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBytes = 10 * 1024 * 1024

// Request describes one scrape call.
type Request struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats,omitempty"`
	OnlyMainContent bool     `json:"onlyMainContent,omitempty"`
	TimeoutMs       int      `json:"timeout,omitempty"`
}

// Response is the service's payload for one URL. Metadata values can be
// strings, numbers, or arrays depending on what the page exposed.
type Response struct {
	Markdown   string                 `json:"markdown"`
	HTML       string                 `json:"html"`
	Metadata   map[string]interface{} `json:"metadata"`
	StatusCode int                    `json:"statusCode"`
}

// Scraper is the boundary the fetcher depends on.
type Scraper interface {
	Scrape(ctx context.Context, req Request) (*Response, error)
}

// Client talks to a scrape service over its JSON POST API.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client: &http.Client{
			// The per-call budget is enforced by the caller's context;
			// this is a hard stop against a wedged connection.
			Timeout: 2 * time.Minute,
		},
	}
}

type envelope struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Data    *Response `json:"data"`
}

func (c *Client) Scrape(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scrape request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "recipe-ingest/1.0")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read scrape response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape service returned HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}
	if !env.Success || env.Data == nil {
		msg := env.Error
		if msg == "" {
			msg = "empty response"
		}
		return nil, fmt.Errorf("scrape service error: %s", msg)
	}
	if env.Data.StatusCode == 0 {
		env.Data.StatusCode = http.StatusOK
	}
	return env.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
