// Package extract turns a fetched page into a candidate recipe. Strategies
// run in strict priority order: embedded schema.org structured data, then
// markdown heading/list heuristics, then an optional AI fallback. The first
// strategy that yields a valid candidate wins.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plateful/recipe-ingest/models"
)

// ErrNotARecipe indicates that no strategy found a usable recipe on the
// page. It is an expected outcome, not a failure.
var ErrNotARecipe = errors.New("no recipe found")

// AIExtractor is the external AI-extraction capability. Implementations
// return a candidate with Confidence set, or an error wrapping ErrNotARecipe
// when the model judges the page to hold no recipe.
type AIExtractor interface {
	ExtractRecipe(ctx context.Context, rawText, sourceURL string, metadata map[string]string) (*models.CandidateRecipe, error)
}

const defaultAIMaxChars = 50000

type Extractor struct {
	ai         AIExtractor
	aiMaxChars int
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithAIFallback enables the third strategy. A nil extractor leaves it off.
func WithAIFallback(ai AIExtractor) Option {
	return func(e *Extractor) { e.ai = ai }
}

// WithAIMaxChars bounds the prompt size handed to the AI fallback.
func WithAIMaxChars(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.aiMaxChars = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		aiMaxChars: defaultAIMaxChars,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the strategy chain over one page.
func (e *Extractor) Extract(ctx context.Context, page *models.FetchedPage) (*models.CandidateRecipe, error) {
	if candidate := fromStructuredData(page); candidate != nil {
		return e.finish(candidate, page, models.MethodStructuredData, 1.0), nil
	}

	if page.Markdown != "" {
		if candidate := fromMarkdown(page); candidate != nil {
			return e.finish(candidate, page, models.MethodMarkdownHeuristic, 1.0), nil
		}
	}

	if e.ai != nil {
		e.logger.Debug("falling back to AI extraction", "url", page.SourceURL)
		raw := page.Markdown
		if raw == "" {
			raw = page.HTML
		}
		candidate, err := e.ai.ExtractRecipe(ctx, truncateRunes(raw, e.aiMaxChars), page.SourceURL, page.Metadata)
		if err != nil {
			return nil, err
		}
		return e.finish(candidate, page, models.MethodAIFallback, candidate.Confidence), nil
	}

	return nil, fmt.Errorf("%s: %w", page.SourceURL, ErrNotARecipe)
}

// finish stamps provenance on the winning candidate and backfills fields
// every strategy can take from page metadata.
func (e *Extractor) finish(c *models.CandidateRecipe, page *models.FetchedPage, method models.ExtractionMethod, confidence float64) *models.CandidateRecipe {
	c.SourceURL = page.SourceURL
	c.Method = method
	c.Confidence = confidence

	if c.ImageURL == "" {
		c.ImageURL = page.Meta("og:image")
	}
	if c.Description == "" {
		c.Description = page.Meta("og:description", "description")
	}

	if tag := languageTag(candidateText(c, page)); tag != "" && !c.HasTag(tag) {
		c.Tags = append(c.Tags, tag)
	}

	e.logger.Debug("extracted candidate recipe",
		"url", c.SourceURL,
		"method", string(method),
		"ingredients", len(c.Ingredients),
		"instructions", len(c.Instructions))
	return c
}

// candidateText assembles a detection sample biased toward the recipe's own
// prose rather than page boilerplate.
func candidateText(c *models.CandidateRecipe, page *models.FetchedPage) string {
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteString("\n")
	b.WriteString(c.Description)
	b.WriteString("\n")
	for _, step := range c.Instructions {
		b.WriteString(step)
		b.WriteString("\n")
	}
	if b.Len() < 80 {
		b.WriteString(page.Markdown)
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
