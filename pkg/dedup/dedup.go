// Package dedup guards against re-ingesting content the store already
// holds, by exact source URL and by fuzzy title similarity scoped to the
// attributed chef.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/plateful/recipe-ingest/models"
)

// DefaultSimilarityThreshold tolerates trivial title variants ("Perfect
// Roast Chicken" vs "Perfect Roast Chicken Recipe") while keeping distinct
// dishes apart.
const DefaultSimilarityThreshold = 0.85

// Index is the read side of the recipe store the deduplicator needs.
type Index interface {
	// FindBySourceURL returns nil, nil when the URL has not been ingested.
	FindBySourceURL(ctx context.Context, sourceURL string) (*models.IngestedRecipeRef, error)
	FindTitlesByChef(ctx context.Context, chefID string) ([]string, error)
}

// DuplicateError reports a dedup hit and what it collided with.
type DuplicateError struct {
	Reason   string // models.ReasonDuplicateURL or models.ReasonDuplicateTitle
	Existing string // the colliding URL or title
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate (%s) of %q", e.Reason, e.Existing)
}

// AsDuplicateError unwraps err into a DuplicateError, if it is one.
func AsDuplicateError(err error) (*DuplicateError, bool) {
	var de *DuplicateError
	ok := errors.As(err, &de)
	return de, ok
}

type Deduplicator struct {
	index     Index
	threshold float64
}

func New(index Index, threshold float64) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{index: index, threshold: threshold}
}

// Check returns nil when the candidate is new, a DuplicateError on a hit.
// The fuzzy title comparison runs against every title recorded for the
// chef; an empty chefID skips it, since unattributed recipes have no
// meaningful title scope.
func (d *Deduplicator) Check(ctx context.Context, candidate *models.CandidateRecipe, chefID string) error {
	existing, err := d.index.FindBySourceURL(ctx, candidate.SourceURL)
	if err != nil {
		return fmt.Errorf("url dedup lookup failed: %w", err)
	}
	if existing != nil {
		return &DuplicateError{Reason: models.ReasonDuplicateURL, Existing: existing.SourceURL}
	}

	if chefID == "" {
		return nil
	}

	titles, err := d.index.FindTitlesByChef(ctx, chefID)
	if err != nil {
		return fmt.Errorf("title dedup lookup failed: %w", err)
	}
	for _, title := range titles {
		if TitleSimilarity(candidate.Title, title) >= d.threshold {
			return &DuplicateError{Reason: models.ReasonDuplicateTitle, Existing: title}
		}
	}
	return nil
}

// TitleSimilarity computes case-insensitive normalized edit-distance
// similarity: (maxLen - levenshtein) / maxLen over runes. Titles are
// canonicalized first, dropping a trailing "recipe" word, so "Perfect Roast
// Chicken Recipe" collapses onto "Perfect Roast Chicken".
func TitleSimilarity(a, b string) float64 {
	a = canonicalTitle(a)
	b = canonicalTitle(b)

	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-distance) / float64(maxLen)
}

func canonicalTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = strings.TrimSuffix(title, " recipe")
	title = strings.TrimSuffix(title, " recipes")
	return strings.TrimSpace(title)
}
