// Package fetcher turns a scrape-service response into a normalized
// FetchedPage for the extractor. It owns the page-fetch timeout budget and
// the circuit breaker for the scrape upstream; retries belong to the
// orchestrator so backoff and rate limiting compose instead of stacking.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plateful/recipe-ingest/models"
	"github.com/plateful/recipe-ingest/pkg/resilience"
	"github.com/plateful/recipe-ingest/pkg/scrape"
)

// FetchError reports an unusable scrape result: transport failure, an
// HTTP-like status >= 400, or a page with no content at all.
type FetchError struct {
	URL     string
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch failed for %s (status %d): %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("fetch failed for %s: %s", e.URL, e.Message)
}

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

type Fetcher struct {
	scraper scrape.Scraper
	breaker *resilience.CircuitBreaker
	timeout time.Duration
}

// New builds a fetcher around the given scraper. The breaker is scoped to
// the scrape upstream and should be shared if callers ever parallelize.
func New(scraper scrape.Scraper, timeout time.Duration) *Fetcher {
	return &Fetcher{
		scraper: scraper,
		breaker: resilience.NewCircuitBreaker(5, 60*time.Second, 120*time.Second),
		timeout: timeout,
	}
}

// Fetch scrapes one URL and normalizes the result. It does not retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.FetchedPage, error) {
	var resp *scrape.Response
	err := f.breaker.Do(func() error {
		var opErr error
		resp, opErr = resilience.WithTimeout(ctx, f.timeout, func(ctx context.Context) (*scrape.Response, error) {
			return f.scraper.Scrape(ctx, scrape.Request{
				URL:             url,
				Formats:         []string{"markdown", "html"},
				OnlyMainContent: true,
				TimeoutMs:       int(f.timeout / time.Millisecond),
			})
		})
		return opErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) || resilience.IsTimeout(err) {
			return nil, err
		}
		return nil, &FetchError{URL: url, Message: err.Error()}
	}

	page := normalize(url, resp)
	if page.StatusCode >= 400 {
		return nil, &FetchError{URL: url, Status: page.StatusCode, Message: "upstream returned an error page"}
	}
	if !page.HasContent() {
		return nil, &FetchError{URL: url, Status: page.StatusCode, Message: "scrape returned no content"}
	}
	return page, nil
}
