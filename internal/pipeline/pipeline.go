// Package pipeline runs the end-to-end ingestion sequence for a batch of
// URLs: fetch, extract, validate, attribute, dedup, persist. URLs are
// processed one at a time; a failure on one URL never stops the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/plateful/recipe-ingest/models"
	"github.com/plateful/recipe-ingest/pkg/attribute"
	"github.com/plateful/recipe-ingest/pkg/dedup"
	"github.com/plateful/recipe-ingest/pkg/extract"
	"github.com/plateful/recipe-ingest/pkg/fetcher"
	"github.com/plateful/recipe-ingest/pkg/quality"
	"github.com/plateful/recipe-ingest/pkg/resilience"
)

// Fetcher is the page-fetch capability the pipeline drives.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.FetchedPage, error)
}

// Store is what the pipeline needs from persistence. It extends the dedup
// index with the write side.
type Store interface {
	dedup.Index
	ListActiveChefs(ctx context.Context) ([]models.ChefRecord, error)
	Insert(ctx context.Context, c *models.CandidateRecipe, chefID string) (*models.IngestedRecipeRef, error)
	IncrementChefRecipeCount(ctx context.Context, chefID string) error
}

type Pipeline struct {
	cfg       *models.RunConfig
	fetcher   Fetcher
	extractor *extract.Extractor
	gate      quality.Gate
	dedup     *dedup.Deduplicator
	store     Store
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func New(cfg *models.RunConfig, f Fetcher, e *extract.Extractor, s Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if cfg.RateLimitMs > 0 {
		limit = rate.Every(cfg.RateLimit())
	}
	return &Pipeline{
		cfg:       cfg,
		fetcher:   f,
		extractor: e,
		gate: quality.Gate{
			MinTitleLength:  cfg.MinTitleLength,
			MinIngredients:  cfg.MinIngredients,
			MinInstructions: cfg.MinInstructions,
		},
		dedup:   dedup.New(s, cfg.TitleSimilarity),
		store:   s,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Run processes the batch sequentially and returns the summary report.
// Cancelling the context stops the run between URLs; URLs already processed
// keep their outcomes.
func (p *Pipeline) Run(ctx context.Context, urls []string) (*models.RunReport, error) {
	start := time.Now()

	chefs, err := p.store.ListActiveChefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chefs: %w", err)
	}

	report := &models.RunReport{
		TotalURLs: len(urls),
		DryRun:    !p.cfg.ApplyChanges,
	}

	for i, url := range urls {
		if ctx.Err() != nil {
			p.logger.Warn("run cancelled", "processed", i, "remaining", len(urls)-i)
			break
		}

		p.logger.Info("processing url", "url", url, "position", i+1, "total", len(urls))
		outcome := p.processURL(ctx, url, chefs)
		report.Outcomes = append(report.Outcomes, outcome)
		p.tally(report, outcome)

		p.logger.Info("url finished",
			"url", url,
			"state", string(outcome.State),
			"reason", outcome.Reason)
	}

	report.TotalTimeSeconds = time.Since(start).Seconds()
	return report, nil
}

func (p *Pipeline) tally(report *models.RunReport, outcome models.URLOutcome) {
	switch outcome.State {
	case models.StateSucceeded:
		report.Succeeded++
	case models.StateFailed:
		report.Failed++
	case models.StateSkipped:
		switch outcome.Reason {
		case models.ReasonDuplicateURL, models.ReasonDuplicateTitle:
			report.Skipped.Duplicate++
		case models.ReasonNoChefMatch:
			report.Skipped.NoChef++
		case models.ReasonTitleTooShort, models.ReasonInsufficientContent:
			report.Skipped.LowQuality++
		case models.ReasonNoRecipeFound:
			report.Skipped.NoRecipe++
		}
	}
}

// processURL walks one URL through the state machine. It never returns an
// error: every path ends in a terminal outcome, and a panic inside any stage
// is converted into a FAILED outcome so the batch keeps going.
func (p *Pipeline) processURL(ctx context.Context, url string, chefs []models.ChefRecord) (outcome models.URLOutcome) {
	outcome = models.URLOutcome{URL: url, State: models.StatePending}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing url", "url", url, "panic", r)
			outcome.State = models.StateFailed
			outcome.Reason = models.ReasonUnexpectedError
			outcome.Detail = fmt.Sprintf("panic: %v", r)
		}
	}()

	// Fetch, with retries owned here so backoff and the rate limiter
	// compose. Timeouts and an open breaker are not worth retrying within
	// the same run.
	outcome.State = models.StateFetching
	page, err := resilience.WithRetry(ctx, resilience.RetryConfig{
		MaxAttempts:       p.cfg.FetchMaxAttempts,
		InitialDelay:      time.Duration(p.cfg.FetchInitialDelayMs) * time.Millisecond,
		BackoffMultiplier: p.cfg.FetchBackoffMultiplier,
		MaxDelay:          time.Duration(p.cfg.FetchMaxDelayMs) * time.Millisecond,
		ShouldRetry: func(err error) bool {
			return fetcher.IsFetchError(err)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			p.logger.Warn("fetch attempt failed, retrying",
				"url", url, "attempt", attempt, "delay", delay.String(), "error", err)
		},
	}, func(ctx context.Context) (*models.FetchedPage, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return p.fetcher.Fetch(ctx, url)
	})
	if err != nil {
		outcome.State = models.StateFailed
		outcome.Detail = err.Error()
		switch {
		case resilience.IsTimeout(err):
			outcome.Reason = models.ReasonTimeout
		case errors.Is(err, resilience.ErrCircuitOpen):
			outcome.Reason = models.ReasonUpstreamUnavailable
		default:
			outcome.Reason = models.ReasonFetchFailed
		}
		return outcome
	}

	outcome.State = models.StateExtracting
	candidate, err := p.extractor.Extract(ctx, page)
	if err != nil {
		if errors.Is(err, extract.ErrNotARecipe) {
			outcome.State = models.StateSkipped
			outcome.Reason = models.ReasonNoRecipeFound
			return outcome
		}
		outcome.State = models.StateFailed
		outcome.Reason = models.ReasonUnexpectedError
		outcome.Detail = err.Error()
		return outcome
	}
	outcome.Title = candidate.Title
	outcome.Method = candidate.Method
	outcome.Confidence = candidate.Confidence

	outcome.State = models.StateValidating
	if err := p.gate.Validate(candidate); err != nil {
		ve, _ := quality.AsValidationError(err)
		outcome.State = models.StateSkipped
		outcome.Reason = ve.Reason
		outcome.Detail = ve.Detail
		return outcome
	}

	outcome.State = models.StateAttributing
	chefID := ""
	chef, err := attribute.ByDomain(url, chefs)
	switch {
	case err == nil:
		chefID = chef.ID
		outcome.ChefID = chefID
	case errors.Is(err, attribute.ErrNoMatch) && !p.cfg.RequireAttribution:
		p.logger.Debug("no chef match, ingesting unattributed", "url", url)
	case errors.Is(err, attribute.ErrNoMatch):
		outcome.State = models.StateSkipped
		outcome.Reason = models.ReasonNoChefMatch
		return outcome
	default:
		outcome.State = models.StateFailed
		outcome.Reason = models.ReasonUnexpectedError
		outcome.Detail = err.Error()
		return outcome
	}

	outcome.State = models.StateDeduping
	if err := p.dedup.Check(ctx, candidate, chefID); err != nil {
		if de, ok := dedup.AsDuplicateError(err); ok {
			outcome.State = models.StateSkipped
			outcome.Reason = de.Reason
			outcome.Detail = fmt.Sprintf("matches existing %q", de.Existing)
			return outcome
		}
		outcome.State = models.StateFailed
		outcome.Reason = models.ReasonUnexpectedError
		outcome.Detail = err.Error()
		return outcome
	}

	if !p.cfg.ApplyChanges {
		outcome.State = models.StateSucceeded
		outcome.DryRun = true
		return outcome
	}

	outcome.State = models.StatePersisting
	if _, err := p.store.Insert(ctx, candidate, chefID); err != nil {
		outcome.State = models.StateFailed
		outcome.Reason = models.ReasonPersistFailed
		outcome.Detail = err.Error()
		return outcome
	}
	if chefID != "" {
		if err := p.store.IncrementChefRecipeCount(ctx, chefID); err != nil {
			p.logger.Warn("failed to update chef recipe count", "chef_id", chefID, "error", err)
		}
	}

	outcome.State = models.StateSucceeded
	return outcome
}
