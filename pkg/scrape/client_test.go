package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestScrapeSuccess(t *testing.T) {
	var gotAuth string
	var gotReq Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"markdown":   "# Soup",
				"html":       "<h1>Soup</h1>",
				"metadata":   map[string]interface{}{"title": "Soup"},
				"statusCode": 200,
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret-key")
	resp, err := c.Scrape(context.Background(), Request{
		URL:     "https://example.com/soup",
		Formats: []string{"markdown", "html"},
	})
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotReq.URL != "https://example.com/soup" {
		t.Errorf("expected request URL to pass through, got %q", gotReq.URL)
	}
	if resp.Markdown != "# Soup" {
		t.Errorf("expected markdown, got %q", resp.Markdown)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestScrapeServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "target unreachable",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	if _, err := c.Scrape(context.Background(), Request{URL: "https://example.com"}); err == nil {
		t.Fatal("expected error for unsuccessful envelope")
	}
}

func TestScrapeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	if _, err := c.Scrape(context.Background(), Request{URL: "https://example.com"}); err == nil {
		t.Fatal("expected error for HTTP 429")
	}
}

func TestScrapeDefaultsMissingStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"markdown": "content"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	resp, err := c.Scrape(context.Background(), Request{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected defaulted status 200, got %d", resp.StatusCode)
	}
}
